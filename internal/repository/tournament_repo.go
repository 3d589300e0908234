package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// TournamentFilter 赛事列表筛选条件
type TournamentFilter struct {
	Status    string
	CreatedBy string
}

// TournamentRepository 赛事数据访问接口
type TournamentRepository interface {
	Create(ctx context.Context, t *model.Tournament) error
	GetByID(ctx context.Context, id string) (*model.Tournament, error)
	List(ctx context.Context, filter TournamentFilter, offset, limit int) ([]model.Tournament, int64, error)
	Update(ctx context.Context, t *model.Tournament) error
	// UpdateStatus 仅当当前状态等于 expected 时写入 next，否则返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type tournamentRepo struct {
	db *gorm.DB
}

// NewTournamentRepo 创建 TournamentRepository 实例
func NewTournamentRepo(db *gorm.DB) TournamentRepository {
	return &tournamentRepo{db: db}
}

func (r *tournamentRepo) Create(ctx context.Context, t *model.Tournament) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tournamentRepo) GetByID(ctx context.Context, id string) (*model.Tournament, error) {
	var t model.Tournament
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tournamentRepo) List(ctx context.Context, filter TournamentFilter, offset, limit int) ([]model.Tournament, int64, error) {
	var list []model.Tournament
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Tournament{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != "" {
		db = db.Where("created_by = ?", filter.CreatedBy)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("start_date DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Update 只写描述性字段，状态只能经 UpdateStatus 变更
func (r *tournamentRepo) Update(ctx context.Context, t *model.Tournament) error {
	return r.db.WithContext(ctx).
		Model(&model.Tournament{}).
		Where("tournament_id = ?", t.TournamentID).
		Updates(map[string]interface{}{
			"title":       t.Title,
			"description": t.Description,
			"rules":       t.Rules,
			"location":    t.Location,
			"banner_url":  t.BannerURL,
			"start_date":  t.StartDate,
			"end_date":    t.EndDate,
			"updated_by":  t.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error
}

func (r *tournamentRepo) UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Tournament{}).
		Where("tournament_id = ? AND status = ?", id, expected).
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

func (r *tournamentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Tournament{}).
		Where("tournament_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
