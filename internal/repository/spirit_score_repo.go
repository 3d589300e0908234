package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
)

// SpiritScoreRepository 精神分数据访问接口（只追加）
type SpiritScoreRepository interface {
	// Create 违反 (match_id, submitted_by_team_id) 唯一约束时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, score *model.SpiritScore) error
	ExistsForTeam(ctx context.Context, matchID, teamID string) (bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]model.SpiritScore, error)
	ListByMatchIDs(ctx context.Context, matchIDs []string) ([]model.SpiritScore, error)
}

type spiritScoreRepo struct {
	db *gorm.DB
}

// NewSpiritScoreRepo 创建 SpiritScoreRepository 实例
func NewSpiritScoreRepo(db *gorm.DB) SpiritScoreRepository {
	return &spiritScoreRepo{db: db}
}

func (r *spiritScoreRepo) Create(ctx context.Context, score *model.SpiritScore) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *spiritScoreRepo) ExistsForTeam(ctx context.Context, matchID, teamID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SpiritScore{}).
		Where("match_id = ? AND submitted_by_team_id = ?", matchID, teamID).
		Count(&count).Error
	return count > 0, err
}

func (r *spiritScoreRepo) ListByMatch(ctx context.Context, matchID string) ([]model.SpiritScore, error) {
	var scores []model.SpiritScore
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Find(&scores).Error
	return scores, err
}

func (r *spiritScoreRepo) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]model.SpiritScore, error) {
	var scores []model.SpiritScore
	if len(matchIDs) == 0 {
		return scores, nil
	}
	err := r.db.WithContext(ctx).
		Where("match_id IN ?", matchIDs).
		Find(&scores).Error
	return scores, err
}
