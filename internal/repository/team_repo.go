package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// TeamRepository 球队与球员数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]model.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Team, error)
	// UpdateRegistration 报名状态与审批人在同一条 UPDATE 中写入：仅 next 为 approved 时
	// 记录 approved_by。当前状态不等于 expected 时返回 ErrOptimisticLock
	UpdateRegistration(ctx context.Context, id, expected, next, updatedBy string) error
	AddPlayers(ctx context.Context, players []model.Player) error
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Players").Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("Players").
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) ListByTournament(ctx context.Context, tournamentID string) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).
		Preload("Players").
		Where("tournament_id = ?", tournamentID).
		Order("created_at ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Team, error) {
	var teams []model.Team
	if len(ids) == 0 {
		return teams, nil
	}
	err := r.db.WithContext(ctx).
		Where("team_id IN ?", ids).
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) UpdateRegistration(ctx context.Context, id, expected, next, updatedBy string) error {
	updates := map[string]interface{}{
		"registration_status": next,
		"updated_by":          updatedBy,
		"updated_at":          gorm.Expr("NOW()"),
	}
	if next == "approved" {
		updates["approved_by"] = updatedBy
	}

	result := r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("team_id = ? AND registration_status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *teamRepo) AddPlayers(ctx context.Context, players []model.Player) error {
	if len(players) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&players).Error
}
