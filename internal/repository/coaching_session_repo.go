package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nisheeka1604/yultimate/internal/model"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// SessionFilter 训练课程列表筛选条件
type SessionFilter struct {
	CoachID string
	Status  string
	From    *time.Time
	To      *time.Time
}

// CoachingSessionRepository 训练课程数据访问接口
type CoachingSessionRepository interface {
	Create(ctx context.Context, session *model.CoachingSession) error
	GetByID(ctx context.Context, id string) (*model.CoachingSession, error)
	// GetByIDForUpdate 事务内加行锁，串行化同一课程的出勤写入
	GetByIDForUpdate(ctx context.Context, id string) (*model.CoachingSession, error)
	List(ctx context.Context, filter SessionFilter) ([]model.CoachingSession, error)
	UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error
}

type coachingSessionRepo struct {
	db *gorm.DB
}

// NewCoachingSessionRepo 创建 CoachingSessionRepository 实例
func NewCoachingSessionRepo(db *gorm.DB) CoachingSessionRepository {
	return &coachingSessionRepo{db: db}
}

func (r *coachingSessionRepo) Create(ctx context.Context, session *model.CoachingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *coachingSessionRepo) GetByID(ctx context.Context, id string) (*model.CoachingSession, error) {
	var session model.CoachingSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *coachingSessionRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.CoachingSession, error) {
	var session model.CoachingSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *coachingSessionRepo) List(ctx context.Context, filter SessionFilter) ([]model.CoachingSession, error) {
	var sessions []model.CoachingSession
	db := r.db.WithContext(ctx).Model(&model.CoachingSession{})
	if filter.CoachID != "" {
		db = db.Where("coach_id = ?", filter.CoachID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("scheduled_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_date < ?", *filter.To)
	}
	err := db.Order("scheduled_date ASC").Find(&sessions).Error
	return sessions, err
}

func (r *coachingSessionRepo) UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.CoachingSession{}).
		Where("session_id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
