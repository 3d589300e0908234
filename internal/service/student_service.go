package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// StudentService 学员档案业务接口
type StudentService interface {
	Get(ctx context.Context, actor policy.Actor, studentID string) (*dto.StudentProfileResponse, error)
	GetMine(ctx context.Context, actor policy.Actor) (*dto.StudentProfileResponse, error)
	// List 管理员查看全部，教练只看自己负责的学员
	List(ctx context.Context, actor policy.Actor, req *dto.StudentListRequest) ([]dto.StudentProfileResponse, int64, error)
	Update(ctx context.Context, actor policy.Actor, studentID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error)
	AssignCoach(ctx context.Context, actor policy.Actor, studentID string, coachID *string) (*dto.StudentProfileResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

func (s *studentService) Get(ctx context.Context, actor policy.Actor, studentID string) (*dto.StudentProfileResponse, error) {
	profile, err := s.load(ctx, "student.Get", studentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeStudentView(actor, profile); err != nil {
		return nil, err
	}
	return toStudentProfileResponse(profile), nil
}

func (s *studentService) GetMine(ctx context.Context, actor policy.Actor) (*dto.StudentProfileResponse, error) {
	const op = "student.GetMine"
	if err := policy.AuthorizeRole(actor, policy.ActionViewOwnProgress); err != nil {
		return nil, err
	}
	profile, err := s.repo.StudentProfile.GetByUserID(ctx, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "学员档案不存在")
		}
		s.logger.Error("查询学员档案失败", zap.String("user_id", actor.ID), zap.Error(err))
		return nil, err
	}
	return toStudentProfileResponse(profile), nil
}

func (s *studentService) List(ctx context.Context, actor policy.Actor, req *dto.StudentListRequest) ([]dto.StudentProfileResponse, int64, error) {
	const op = "student.List"

	coachID := req.CoachID
	switch actor.Role {
	case policy.RoleAdmin:
	case policy.RoleCoach:
		if coachID != "" && coachID != actor.ID {
			return nil, 0, pkgerrors.PermissionDenied(op, "只能查看自己负责的学员")
		}
		coachID = actor.ID
	default:
		return nil, 0, pkgerrors.PermissionDenied(op, "当前角色无权查看学员列表")
	}

	profiles, total, err := s.repo.StudentProfile.List(ctx, coachID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学员失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentProfileResponse, 0, len(profiles))
	for i := range profiles {
		result = append(result, *toStudentProfileResponse(&profiles[i]))
	}
	return result, total, nil
}

func (s *studentService) Update(ctx context.Context, actor policy.Actor, studentID string, req *dto.UpdateStudentProfileRequest) (*dto.StudentProfileResponse, error) {
	const op = "student.Update"
	if err := policy.AuthorizeRole(actor, policy.ActionEditStudentProfile); err != nil {
		return nil, err
	}
	profile, err := s.load(ctx, op, studentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionEditStudentProfile, policy.Subject{OwnerID: profile.UserID}); err != nil {
		return nil, err
	}

	if req.DateOfBirth != nil {
		profile.DateOfBirth = req.DateOfBirth
	}
	if req.School != nil {
		profile.School = *req.School
	}
	if req.GuardianName != nil {
		profile.GuardianName = *req.GuardianName
	}
	if req.GuardianPhone != nil {
		profile.GuardianPhone = *req.GuardianPhone
	}
	profile.UpdatedBy = &actor.ID

	if err := s.repo.StudentProfile.Update(ctx, profile); err != nil {
		if conflict := lockConflict(op, "学员档案已被修改，请刷新后重试", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("更新学员档案失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return toStudentProfileResponse(profile), nil
}

func (s *studentService) AssignCoach(ctx context.Context, actor policy.Actor, studentID string, coachID *string) (*dto.StudentProfileResponse, error) {
	const op = "student.AssignCoach"
	if err := policy.Authorize(actor, policy.ActionAssignCoach, policy.Subject{}); err != nil {
		return nil, err
	}

	profile, err := s.load(ctx, op, studentID)
	if err != nil {
		return nil, err
	}

	if coachID != nil {
		coach, err := s.repo.User.GetByID(ctx, *coachID)
		if err != nil {
			if isNotFound(err) {
				return nil, pkgerrors.NotFound(op, "教练不存在")
			}
			s.logger.Error("查询教练失败", zap.String("id", *coachID), zap.Error(err))
			return nil, err
		}
		if coach.Role != string(policy.RoleCoach) {
			return nil, pkgerrors.Validation(op, "指定用户不是教练")
		}
	}

	profile.CoachID = coachID
	profile.UpdatedBy = &actor.ID
	if err := s.repo.StudentProfile.Update(ctx, profile); err != nil {
		if conflict := lockConflict(op, "学员档案已被修改，请刷新后重试", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("指派教练失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return toStudentProfileResponse(profile), nil
}

func (s *studentService) load(ctx context.Context, op, studentID string) (*model.StudentProfile, error) {
	profile, err := s.repo.StudentProfile.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "学员不存在")
		}
		s.logger.Error("查询学员档案失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

func toStudentProfileResponse(p *model.StudentProfile) *dto.StudentProfileResponse {
	resp := &dto.StudentProfileResponse{
		ID:            p.StudentID,
		UserID:        p.UserID,
		CoachID:       p.CoachID,
		School:        p.School,
		GuardianName:  p.GuardianName,
		GuardianPhone: p.GuardianPhone,
	}
	if p.DateOfBirth != nil {
		resp.DateOfBirth = p.DateOfBirth.Format("2006-01-02")
	}
	if p.User != nil {
		resp.FullName = p.User.FullName
		resp.Email = p.User.Email
	}
	return resp
}
