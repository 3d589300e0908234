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

// TeamService 球队报名业务接口
type TeamService interface {
	Register(ctx context.Context, actor policy.Actor, tournamentID string, req *dto.RegisterTeamRequest) (*dto.TeamResponse, error)
	Get(ctx context.Context, teamID string) (*dto.TeamResponse, error)
	// ListByTournament 单次枚举全部球队，展示分组由调用方按 policy 谓词完成
	ListByTournament(ctx context.Context, tournamentID string) ([]dto.TeamResponse, error)
	// Approve / Reject / Waitlist 的 expectedStatus 为空时以读取到的状态作为预期状态
	Approve(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error)
	Reject(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error)
	Waitlist(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error)
	AddPlayers(ctx context.Context, actor policy.Actor, teamID string, players []dto.PlayerInput) (*dto.TeamResponse, error)
}

type teamService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *teamService) Register(ctx context.Context, actor policy.Actor, tournamentID string, req *dto.RegisterTeamRequest) (*dto.TeamResponse, error) {
	const op = "team.Register"
	if err := policy.Authorize(actor, policy.ActionRegisterTeam, policy.Subject{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.Validation(op, "球队名称不能为空")
	}

	tournament, err := s.repo.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "赛事不存在")
		}
		s.logger.Error("查询赛事失败", zap.String("id", tournamentID), zap.Error(err))
		return nil, err
	}
	if policy.TournamentStatus(tournament.Status) != policy.TournamentRegistrationOpen {
		return nil, pkgerrors.Validation(op, "赛事当前未开放报名")
	}

	team := &model.Team{
		TournamentID:       tournamentID,
		Name:               name,
		CaptainID:          actor.ID,
		RegistrationStatus: string(policy.RegistrationPending),
	}
	team.CreatedBy = &actor.ID
	team.UpdatedBy = &actor.ID

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Team.Create(ctx, team); err != nil {
			return err
		}
		team.Players = toPlayers(team.TeamID, req.Players)
		return txRepo.Team.AddPlayers(ctx, team.Players)
	})
	if err != nil {
		s.logger.Error("报名球队失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}

	return toTeamResponse(team), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *teamService) Get(ctx context.Context, teamID string) (*dto.TeamResponse, error) {
	team, err := s.load(ctx, "team.Get", teamID)
	if err != nil {
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID string) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.ListByTournament(ctx, tournamentID)
	if err != nil {
		s.logger.Error("列出球队失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		result = append(result, *toTeamResponse(&teams[i]))
	}
	return result, nil
}

// GroupTeams 按展示需要拆分为已通过、待决定（含候补）与已拒绝
func GroupTeams(teams []dto.TeamResponse) dto.TeamListResponse {
	out := dto.TeamListResponse{
		Approved: []dto.TeamResponse{},
		Pending:  []dto.TeamResponse{},
		Rejected: []dto.TeamResponse{},
	}
	for _, t := range teams {
		status := policy.RegistrationStatus(t.RegistrationStatus)
		switch {
		case policy.IsApproved(status):
			out.Approved = append(out.Approved, t)
		case policy.IsAwaitingDecision(status):
			out.Pending = append(out.Pending, t)
		default:
			out.Rejected = append(out.Rejected, t)
		}
	}
	return out
}

// ────────────────────── 审批 ──────────────────────

func (s *teamService) Approve(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error) {
	return s.decide(ctx, actor, policy.ActionApproveTeam, teamID, expectedStatus, policy.RegistrationApproved)
}

func (s *teamService) Reject(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error) {
	return s.decide(ctx, actor, policy.ActionRejectTeam, teamID, expectedStatus, policy.RegistrationRejected)
}

func (s *teamService) Waitlist(ctx context.Context, actor policy.Actor, teamID, expectedStatus string) (*dto.TeamResponse, error) {
	return s.decide(ctx, actor, policy.ActionWaitlistTeam, teamID, expectedStatus, policy.RegistrationWaitlisted)
}

func (s *teamService) decide(
	ctx context.Context,
	actor policy.Actor,
	action policy.Action,
	teamID, expectedStatus string,
	next policy.RegistrationStatus,
) (*dto.TeamResponse, error) {
	op := "team." + string(action)
	if err := policy.AuthorizeRole(actor, action); err != nil {
		return nil, err
	}

	team, err := s.load(ctx, op, teamID)
	if err != nil {
		return nil, err
	}

	// 调用方持有的状态已过期
	if expectedStatus != "" && expectedStatus != team.RegistrationStatus {
		return nil, pkgerrors.Conflict(op, "报名状态已变化，请刷新后重试")
	}

	if err := policy.Authorize(actor, action, policy.Subject{Status: team.RegistrationStatus}); err != nil {
		return nil, err
	}

	if err := s.repo.Team.UpdateRegistration(ctx, teamID, team.RegistrationStatus, string(next), actor.ID); err != nil {
		if conflict := lockConflict(op, "报名状态已被其他操作修改", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("更新报名状态失败", zap.String("id", teamID), zap.Error(err))
		return nil, err
	}

	team.RegistrationStatus = string(next)
	team.UpdatedBy = &actor.ID
	if next == policy.RegistrationApproved {
		team.ApprovedBy = &actor.ID
	}

	s.notifier.Notify(ctx, []string{team.CaptainID}, NotificationTeamRegistration,
		"球队报名状态更新", "球队「"+team.Name+"」的报名状态已更新为 "+string(next), &team.TeamID)

	return toTeamResponse(team), nil
}

// ────────────────────── AddPlayers ──────────────────────

func (s *teamService) AddPlayers(ctx context.Context, actor policy.Actor, teamID string, players []dto.PlayerInput) (*dto.TeamResponse, error) {
	const op = "team.AddPlayers"
	if err := policy.AuthorizeRole(actor, policy.ActionManageTeamRoster); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, pkgerrors.Validation(op, "球员列表不能为空")
	}

	team, err := s.load(ctx, op, teamID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionManageTeamRoster, policy.Subject{OwnerID: team.CaptainID}); err != nil {
		return nil, err
	}

	tournament, err := s.repo.Tournament.GetByID(ctx, team.TournamentID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "赛事不存在")
		}
		s.logger.Error("查询赛事失败", zap.String("id", team.TournamentID), zap.Error(err))
		return nil, err
	}
	switch policy.TournamentStatus(tournament.Status) {
	case policy.TournamentDraft, policy.TournamentRegistrationOpen:
	default:
		return nil, pkgerrors.InvalidTransition(op, "赛事开始后不能再调整名单")
	}

	added := toPlayers(teamID, players)
	if err := s.repo.Team.AddPlayers(ctx, added); err != nil {
		s.logger.Error("添加球员失败", zap.String("id", teamID), zap.Error(err))
		return nil, err
	}

	team.Players = append(team.Players, added...)
	return toTeamResponse(team), nil
}

// ── 内部辅助方法 ──

func (s *teamService) load(ctx context.Context, op, teamID string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "球队不存在")
		}
		s.logger.Error("查询球队失败", zap.String("id", teamID), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func toPlayers(teamID string, in []dto.PlayerInput) []model.Player {
	players := make([]model.Player, 0, len(in))
	for _, p := range in {
		players = append(players, model.Player{
			TeamID:       teamID,
			UserID:       p.UserID,
			Name:         strings.TrimSpace(p.Name),
			JerseyNumber: p.JerseyNumber,
			Gender:       p.Gender,
		})
	}
	return players
}

func toTeamResponse(t *model.Team) *dto.TeamResponse {
	players := make([]dto.PlayerResponse, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, dto.PlayerResponse{
			ID:           p.PlayerID,
			Name:         p.Name,
			UserID:       p.UserID,
			JerseyNumber: p.JerseyNumber,
			Gender:       p.Gender,
		})
	}
	return &dto.TeamResponse{
		ID:                 t.TeamID,
		TournamentID:       t.TournamentID,
		Name:               t.Name,
		CaptainID:          t.CaptainID,
		RegistrationStatus: t.RegistrationStatus,
		ApprovedBy:         t.ApprovedBy,
		Players:            players,
		CreatedAt:          formatTime(t.CreatedAt),
	}
}
