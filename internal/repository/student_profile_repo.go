package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// StudentProfileRepository 学员档案数据访问接口
type StudentProfileRepository interface {
	Create(ctx context.Context, profile *model.StudentProfile) error
	GetByID(ctx context.Context, id string) (*model.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	// ListByIDs 批量读取，不存在的 ID 直接忽略
	ListByIDs(ctx context.Context, ids []string) ([]model.StudentProfile, error)
	List(ctx context.Context, coachID string, offset, limit int) ([]model.StudentProfile, int64, error)
	// Update 基于 version 的乐观锁更新，冲突时返回 ErrOptimisticLock
	Update(ctx context.Context, profile *model.StudentProfile) error
}

type studentProfileRepo struct {
	db *gorm.DB
}

// NewStudentProfileRepo 创建 StudentProfileRepository 实例
func NewStudentProfileRepo(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepo{db: db}
}

func (r *studentProfileRepo) Create(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *studentProfileRepo) GetByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("student_id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentProfileRepo) ListByIDs(ctx context.Context, ids []string) ([]model.StudentProfile, error) {
	var profiles []model.StudentProfile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", ids).
		Find(&profiles).Error
	return profiles, err
}

func (r *studentProfileRepo) List(ctx context.Context, coachID string, offset, limit int) ([]model.StudentProfile, int64, error) {
	var profiles []model.StudentProfile
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StudentProfile{})
	if coachID != "" {
		db = db.Where("coach_id = ?", coachID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *studentProfileRepo) Update(ctx context.Context, profile *model.StudentProfile) error {
	oldVersion := profile.Version
	result := r.db.WithContext(ctx).
		Model(&model.StudentProfile{}).
		Where("student_id = ? AND version = ?", profile.StudentID, oldVersion).
		Updates(map[string]interface{}{
			"coach_id":       profile.CoachID,
			"date_of_birth":  profile.DateOfBirth,
			"school":         profile.School,
			"guardian_name":  profile.GuardianName,
			"guardian_phone": profile.GuardianPhone,
			"updated_by":     profile.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	profile.Version = oldVersion + 1
	return nil
}
