package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// MatchRepository 比赛数据访问接口
type MatchRepository interface {
	Create(ctx context.Context, match *model.Match) error
	GetByID(ctx context.Context, id string) (*model.Match, error)
	// ListByTournament status 为空时返回全部比赛
	ListByTournament(ctx context.Context, tournamentID, status string) ([]model.Match, error)
	UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error
	// RecordScore 一条 UPDATE 同时写入双方比分并置为 completed
	RecordScore(ctx context.Context, id, expected string, team1Score, team2Score int, updatedBy string) error
}

type matchRepo struct {
	db *gorm.DB
}

// NewMatchRepo 创建 MatchRepository 实例
func NewMatchRepo(db *gorm.DB) MatchRepository {
	return &matchRepo{db: db}
}

func (r *matchRepo) Create(ctx context.Context, match *model.Match) error {
	return r.db.WithContext(ctx).Omit("Team1", "Team2").Create(match).Error
}

func (r *matchRepo) GetByID(ctx context.Context, id string) (*model.Match, error) {
	var match model.Match
	err := r.db.WithContext(ctx).
		Where("match_id = ?", id).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepo) ListByTournament(ctx context.Context, tournamentID, status string) ([]model.Match, error) {
	var matches []model.Match
	db := r.db.WithContext(ctx).
		Preload("Team1").
		Preload("Team2").
		Where("tournament_id = ?", tournamentID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("match_datetime ASC").Find(&matches).Error
	return matches, err
}

func (r *matchRepo) UpdateStatus(ctx context.Context, id, expected, next, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Match{}).
		Where("match_id = ? AND status = ?", id, expected).
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

func (r *matchRepo) RecordScore(ctx context.Context, id, expected string, team1Score, team2Score int, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Match{}).
		Where("match_id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"team1_score": team1Score,
			"team2_score": team2Score,
			"status":      "completed",
			"updated_by":  updatedBy,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
