package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// TournamentService 赛事业务接口
type TournamentService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateTournamentRequest) (*dto.TournamentResponse, error)
	Get(ctx context.Context, id string) (*dto.TournamentResponse, error)
	List(ctx context.Context, req *dto.TournamentListRequest) ([]dto.TournamentResponse, int64, error)
	Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateTournamentRequest) (*dto.TournamentResponse, error)
	// Advance 只能推进到紧邻的下一状态
	Advance(ctx context.Context, actor policy.Actor, id, to string) (*dto.TournamentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

type tournamentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTournamentService 创建 TournamentService 实例
func NewTournamentService(repo *repository.Repository, logger *zap.Logger) TournamentService {
	return &tournamentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *tournamentService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateTournamentRequest) (*dto.TournamentResponse, error) {
	const op = "tournament.Create"
	if err := policy.Authorize(actor, policy.ActionCreateTournament, policy.Subject{}); err != nil {
		return nil, err
	}

	t := &model.Tournament{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Rules:       req.Rules,
		Location:    strings.TrimSpace(req.Location),
		BannerURL:   req.BannerURL,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      string(policy.TournamentDraft),
	}
	if err := validateTournament(op, t); err != nil {
		return nil, err
	}
	t.CreatedBy = &actor.ID
	t.UpdatedBy = &actor.ID

	if err := s.repo.Tournament.Create(ctx, t); err != nil {
		s.logger.Error("创建赛事失败", zap.Error(err))
		return nil, err
	}
	return toTournamentResponse(t), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *tournamentService) Get(ctx context.Context, id string) (*dto.TournamentResponse, error) {
	t, err := s.load(ctx, "tournament.Get", id)
	if err != nil {
		return nil, err
	}
	return toTournamentResponse(t), nil
}

func (s *tournamentService) List(ctx context.Context, req *dto.TournamentListRequest) ([]dto.TournamentResponse, int64, error) {
	filter := repository.TournamentFilter{Status: req.Status, CreatedBy: req.CreatedBy}
	list, total, err := s.repo.Tournament.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出赛事失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TournamentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toTournamentResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *tournamentService) Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateTournamentRequest) (*dto.TournamentResponse, error) {
	const op = "tournament.Update"
	if err := policy.Authorize(actor, policy.ActionEditTournament, policy.Subject{}); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Rules != nil {
		t.Rules = *req.Rules
	}
	if req.Location != nil {
		t.Location = strings.TrimSpace(*req.Location)
	}
	if req.BannerURL != nil {
		t.BannerURL = *req.BannerURL
	}
	if req.StartDate != nil {
		t.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		t.EndDate = *req.EndDate
	}
	if err := validateTournament(op, t); err != nil {
		return nil, err
	}
	t.UpdatedBy = &actor.ID

	if err := s.repo.Tournament.Update(ctx, t); err != nil {
		s.logger.Error("更新赛事失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTournamentResponse(t), nil
}

// ────────────────────── Advance ──────────────────────

func (s *tournamentService) Advance(ctx context.Context, actor policy.Actor, id, to string) (*dto.TournamentResponse, error) {
	const op = "tournament.Advance"

	// 非管理员推进状态按非法流转上报，同时保留权限原因
	if err := policy.AuthorizeRole(actor, policy.ActionAdvanceTournament); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrInvalidTransition, op, "只有管理员可以推进赛事状态", err)
	}

	target := policy.TournamentStatus(to)
	if !target.Valid() {
		return nil, pkgerrors.Validation(op, "无效的赛事状态")
	}

	t, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	current := policy.TournamentStatus(t.Status)
	if !policy.CanTransitionTournament(current, target) {
		return nil, pkgerrors.InvalidTransition(op, "赛事只能推进到下一状态: "+string(current)+" → "+to)
	}

	if err := s.repo.Tournament.UpdateStatus(ctx, id, string(current), string(target), actor.ID); err != nil {
		if conflict := lockConflict(op, "赛事状态已被其他操作修改", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("推进赛事状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	t.Status = string(target)
	t.UpdatedBy = &actor.ID
	return toTournamentResponse(t), nil
}

// ────────────────────── Delete ──────────────────────

func (s *tournamentService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	const op = "tournament.Delete"
	if err := policy.Authorize(actor, policy.ActionDeleteTournament, policy.Subject{}); err != nil {
		return err
	}
	if _, err := s.load(ctx, op, id); err != nil {
		return err
	}
	if err := s.repo.Tournament.Delete(ctx, id, actor.ID); err != nil {
		s.logger.Error("删除赛事失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *tournamentService) load(ctx context.Context, op, id string) (*model.Tournament, error) {
	t, err := s.repo.Tournament.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "赛事不存在")
		}
		s.logger.Error("查询赛事失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func validateTournament(op string, t *model.Tournament) error {
	if t.Title == "" {
		return pkgerrors.Validation(op, "赛事名称不能为空")
	}
	if t.Location == "" {
		return pkgerrors.Validation(op, "比赛地点不能为空")
	}
	if t.StartDate.After(t.EndDate) {
		return pkgerrors.Validation(op, "开始日期不能晚于结束日期")
	}
	return nil
}

func toTournamentResponse(t *model.Tournament) *dto.TournamentResponse {
	return &dto.TournamentResponse{
		ID:          t.TournamentID,
		Title:       t.Title,
		Description: t.Description,
		Rules:       t.Rules,
		Location:    t.Location,
		BannerURL:   t.BannerURL,
		StartDate:   formatTime(t.StartDate),
		EndDate:     formatTime(t.EndDate),
		Status:      t.Status,
		CreatedBy:   derefString(t.CreatedBy),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}
