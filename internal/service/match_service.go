package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
	"github.com/Nisheeka1604/yultimate/pkg/metrics"
)

// MatchService 比赛与精神分业务接口
type MatchService interface {
	Create(ctx context.Context, actor policy.Actor, tournamentID string, req *dto.CreateMatchRequest) (*dto.MatchResponse, error)
	Get(ctx context.Context, matchID string) (*dto.MatchResponse, error)
	ListByTournament(ctx context.Context, tournamentID, status string) ([]dto.MatchResponse, error)
	Start(ctx context.Context, actor policy.Actor, matchID string) (*dto.MatchResponse, error)
	// RecordScore 写入比分的同时将比赛置为 completed
	RecordScore(ctx context.Context, actor policy.Actor, matchID string, team1Score, team2Score int) (*dto.MatchResponse, error)

	SubmitSpiritScore(ctx context.Context, actor policy.Actor, matchID string, req *dto.SubmitSpiritScoreRequest) (*dto.SpiritScoreResponse, error)
	ListSpiritScores(ctx context.Context, matchID string) ([]dto.SpiritScoreResponse, error)
	// ComputeSpiritLeaderboard 赛事内精神分排行榜，优先读缓存
	ComputeSpiritLeaderboard(ctx context.Context, tournamentID string) ([]dto.LeaderboardEntry, error)
	// RefreshLeaderboard 跳过缓存重新计算并写回
	RefreshLeaderboard(ctx context.Context, tournamentID string) error
}

type matchService struct {
	engine config.EngineConfig
	repo   *repository.Repository
	cache  LeaderboardCache
	logger *zap.Logger
}

// NewMatchService 创建 MatchService 实例；cache 可为 nil
func NewMatchService(engine config.EngineConfig, repo *repository.Repository, cache LeaderboardCache, logger *zap.Logger) MatchService {
	return &matchService{engine: engine, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *matchService) Create(ctx context.Context, actor policy.Actor, tournamentID string, req *dto.CreateMatchRequest) (*dto.MatchResponse, error) {
	const op = "match.Create"
	if err := policy.Authorize(actor, policy.ActionCreateMatch, policy.Subject{}); err != nil {
		return nil, err
	}
	if req.Team1ID == req.Team2ID {
		return nil, pkgerrors.Validation(op, "比赛双方不能是同一支球队")
	}

	var (
		tournament   *model.Tournament
		team1, team2 *model.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tournament, err = s.repo.Tournament.GetByID(gctx, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		team1, err = s.repo.Team.GetByID(gctx, req.Team1ID)
		return err
	})
	g.Go(func() (err error) {
		team2, err = s.repo.Team.GetByID(gctx, req.Team2ID)
		return err
	})
	if err := g.Wait(); err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "赛事或球队不存在")
		}
		s.logger.Error("查询比赛关联数据失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}

	for _, team := range []*model.Team{team1, team2} {
		if team.TournamentID != tournament.TournamentID {
			return nil, pkgerrors.Validation(op, "球队「"+team.Name+"」不属于该赛事")
		}
		if !policy.IsApproved(policy.RegistrationStatus(team.RegistrationStatus)) {
			return nil, pkgerrors.Validation(op, "球队「"+team.Name+"」尚未通过审核")
		}
	}

	match := &model.Match{
		TournamentID:  tournamentID,
		Team1ID:       req.Team1ID,
		Team2ID:       req.Team2ID,
		MatchDatetime: req.MatchDatetime,
		Field:         strings.TrimSpace(req.Field),
		Status:        string(policy.MatchScheduled),
	}
	match.CreatedBy = &actor.ID
	match.UpdatedBy = &actor.ID

	if err := s.repo.Match.Create(ctx, match); err != nil {
		s.logger.Error("创建比赛失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}
	match.Team1, match.Team2 = team1, team2
	return toMatchResponse(match), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *matchService) Get(ctx context.Context, matchID string) (*dto.MatchResponse, error) {
	match, err := s.load(ctx, "match.Get", matchID)
	if err != nil {
		return nil, err
	}
	return toMatchResponse(match), nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID, status string) ([]dto.MatchResponse, error) {
	matches, err := s.repo.Match.ListByTournament(ctx, tournamentID, status)
	if err != nil {
		s.logger.Error("列出比赛失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.MatchResponse, 0, len(matches))
	for i := range matches {
		result = append(result, *toMatchResponse(&matches[i]))
	}
	return result, nil
}

// ────────────────────── Start ──────────────────────

func (s *matchService) Start(ctx context.Context, actor policy.Actor, matchID string) (*dto.MatchResponse, error) {
	const op = "match.Start"
	if err := policy.AuthorizeRole(actor, policy.ActionStartMatch); err != nil {
		return nil, err
	}
	match, err := s.load(ctx, op, matchID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionStartMatch, policy.Subject{Status: match.Status}); err != nil {
		return nil, err
	}

	next := string(policy.MatchInProgress)
	if err := s.repo.Match.UpdateStatus(ctx, matchID, match.Status, next, actor.ID); err != nil {
		if conflict := lockConflict(op, "比赛状态已被其他操作修改", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("开始比赛失败", zap.String("id", matchID), zap.Error(err))
		return nil, err
	}
	match.Status = next
	return toMatchResponse(match), nil
}

// ────────────────────── RecordScore ──────────────────────

func (s *matchService) RecordScore(ctx context.Context, actor policy.Actor, matchID string, team1Score, team2Score int) (*dto.MatchResponse, error) {
	const op = "match.RecordScore"
	if err := policy.AuthorizeRole(actor, policy.ActionRecordMatchScore); err != nil {
		return nil, err
	}
	if team1Score < 0 || team2Score < 0 {
		return nil, pkgerrors.Validation(op, "比分不能为负数")
	}

	match, err := s.load(ctx, op, matchID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRecordMatchScore, policy.Subject{Status: match.Status}); err != nil {
		return nil, err
	}

	if err := s.repo.Match.RecordScore(ctx, matchID, match.Status, team1Score, team2Score, actor.ID); err != nil {
		if conflict := lockConflict(op, "比赛状态已被其他操作修改", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("记录比分失败", zap.String("id", matchID), zap.Error(err))
		return nil, err
	}

	match.Team1Score = &team1Score
	match.Team2Score = &team2Score
	match.Status = string(policy.MatchCompleted)
	s.invalidate(ctx, match.TournamentID)
	return toMatchResponse(match), nil
}

// ────────────────────── SubmitSpiritScore ──────────────────────

func (s *matchService) SubmitSpiritScore(ctx context.Context, actor policy.Actor, matchID string, req *dto.SubmitSpiritScoreRequest) (*dto.SpiritScoreResponse, error) {
	const op = "match.SubmitSpiritScore"
	if err := policy.AuthorizeRole(actor, policy.ActionSubmitSpiritScore); err != nil {
		return nil, err
	}

	sub := policy.SpiritSubmission{
		MatchID:        matchID,
		RulesKnowledge: derefInt(req.RulesKnowledge),
		Fouls:          derefInt(req.Fouls),
		BodyContact:    derefInt(req.BodyContact),
		Fairness:       derefInt(req.Fairness),
		Attitude:       derefInt(req.Attitude),
		Communication:  derefInt(req.Communication),
	}
	if !sub.InRange(s.engine.SpiritScoreMin, s.engine.SpiritScoreMax) {
		return nil, pkgerrors.Validation(op, "精神分各维度超出允许范围")
	}

	match, err := s.load(ctx, op, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(req.SubmittedByTeamID) {
		return nil, pkgerrors.Validation(op, "提交球队未参加该比赛")
	}

	team, err := s.repo.Team.GetByID(ctx, req.SubmittedByTeamID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "球队不存在")
		}
		s.logger.Error("查询球队失败", zap.String("id", req.SubmittedByTeamID), zap.Error(err))
		return nil, err
	}

	subject := policy.Subject{Status: match.Status, ParticipantIDs: team.ParticipantIDs()}
	if err := policy.Authorize(actor, policy.ActionSubmitSpiritScore, subject); err != nil {
		return nil, err
	}

	exists, err := s.repo.SpiritScore.ExistsForTeam(ctx, matchID, team.TeamID)
	if err != nil {
		s.logger.Error("查询精神分失败", zap.String("match_id", matchID), zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, pkgerrors.Conflict(op, "该球队已提交过本场比赛的精神分")
	}

	score := &model.SpiritScore{
		MatchID:           matchID,
		SubmittedByTeamID: team.TeamID,
		OpponentTeamID:    match.OpponentOf(team.TeamID),
		RulesKnowledge:    sub.RulesKnowledge,
		Fouls:             sub.Fouls,
		BodyContact:       sub.BodyContact,
		Fairness:          sub.Fairness,
		Attitude:          sub.Attitude,
		Communication:     sub.Communication,
		Comments:          strings.TrimSpace(req.Comments),
		SubmittedBy:       actor.ID,
	}
	if err := s.repo.SpiritScore.Create(ctx, score); err != nil {
		if conflict := lockConflict(op, "该球队已提交过本场比赛的精神分", err); conflict != nil {
			return nil, conflict
		}
		s.logger.Error("提交精神分失败", zap.String("match_id", matchID), zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, match.TournamentID)
	return toSpiritScoreResponse(score), nil
}

func (s *matchService) ListSpiritScores(ctx context.Context, matchID string) ([]dto.SpiritScoreResponse, error) {
	scores, err := s.repo.SpiritScore.ListByMatch(ctx, matchID)
	if err != nil {
		s.logger.Error("列出精神分失败", zap.String("match_id", matchID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.SpiritScoreResponse, 0, len(scores))
	for i := range scores {
		result = append(result, *toSpiritScoreResponse(&scores[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 精神分排行榜
// ═══════════════════════════════════════════════════════════

func (s *matchService) ComputeSpiritLeaderboard(ctx context.Context, tournamentID string) ([]dto.LeaderboardEntry, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.GetLeaderboard(ctx, tournamentID)
		if err != nil {
			s.logger.Warn("读取排行榜缓存失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		}
		metrics.ObserveLeaderboardCache(ok)
		if ok {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal(payload, &entries); err == nil {
				return entries, nil
			}
		}
	}

	gen, cacheable := s.generation(ctx, tournamentID)
	entries, err := s.computeLeaderboard(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.store(ctx, tournamentID, entries, gen)
	}
	return entries, nil
}

func (s *matchService) RefreshLeaderboard(ctx context.Context, tournamentID string) error {
	gen, cacheable := s.generation(ctx, tournamentID)
	entries, err := s.computeLeaderboard(ctx, tournamentID)
	if err != nil {
		return err
	}
	if cacheable {
		s.store(ctx, tournamentID, entries, gen)
	}
	return nil
}

// computeLeaderboard 1) 赛事内已完赛比赛 2) 并发读取这些比赛的精神分与参赛球队名称 3) 聚合
func (s *matchService) computeLeaderboard(ctx context.Context, tournamentID string) ([]dto.LeaderboardEntry, error) {
	started := time.Now()
	defer func() { metrics.LeaderboardCompute.Observe(time.Since(started).Seconds()) }()

	matches, err := s.repo.Match.ListByTournament(ctx, tournamentID, string(policy.MatchCompleted))
	if err != nil {
		s.logger.Error("查询已完赛比赛失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}

	completed := make([]policy.CompletedMatch, 0, len(matches))
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		completed = append(completed, policy.CompletedMatch{MatchID: m.MatchID, Team1ID: m.Team1ID, Team2ID: m.Team2ID})
		matchIDs = append(matchIDs, m.MatchID)
	}
	teamIDs := make([]string, 0)
	for id := range policy.ParticipatingTeams(completed) {
		teamIDs = append(teamIDs, id)
	}

	var (
		scores []model.SpiritScore
		teams  []model.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		scores, err = s.repo.SpiritScore.ListByMatchIDs(gctx, matchIDs)
		return err
	})
	g.Go(func() (err error) {
		teams, err = s.repo.Team.ListByIDs(gctx, teamIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("读取排行榜数据失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, err
	}

	subs := make([]policy.SpiritSubmission, 0, len(scores))
	for _, sc := range scores {
		subs = append(subs, policy.SpiritSubmission{
			MatchID:        sc.MatchID,
			OpponentTeamID: sc.OpponentTeamID,
			RulesKnowledge: sc.RulesKnowledge,
			Fouls:          sc.Fouls,
			BodyContact:    sc.BodyContact,
			Fairness:       sc.Fairness,
			Attitude:       sc.Attitude,
			Communication:  sc.Communication,
		})
	}

	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.TeamID] = t.Name
	}

	ranked := policy.AggregateSpiritLeaderboard(completed, subs)
	entries := make([]dto.LeaderboardEntry, 0, len(ranked))
	for i, e := range ranked {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:         i + 1,
			TeamID:       e.TeamID,
			TeamName:     names[e.TeamID],
			AverageScore: e.AverageScore,
			Submissions:  e.Submissions,
		})
	}
	return entries, nil
}

// generation 读取缓存代数；无缓存或读取失败时本次结果不写回
func (s *matchService) generation(ctx context.Context, tournamentID string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.LeaderboardGeneration(ctx, tournamentID)
	if err != nil {
		s.logger.Warn("读取排行榜缓存代数失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// store 计算期间发生过失效时放弃写入
func (s *matchService) store(ctx context.Context, tournamentID string, entries []dto.LeaderboardEntry, gen int64) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	stored, err := s.cache.SetLeaderboard(ctx, tournamentID, payload, s.engine.LeaderboardCacheTTL, gen)
	if err != nil {
		s.logger.Warn("写入排行榜缓存失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return
	}
	if !stored {
		s.logger.Debug("排行榜计算期间缓存已失效，放弃写入", zap.String("tournament_id", tournamentID))
	}
}

func (s *matchService) invalidate(ctx context.Context, tournamentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLeaderboard(ctx, tournamentID); err != nil {
		s.logger.Warn("清除排行榜缓存失败", zap.String("tournament_id", tournamentID), zap.Error(err))
	}
}

// ── 内部辅助方法 ──

func (s *matchService) load(ctx context.Context, op, matchID string) (*model.Match, error) {
	match, err := s.repo.Match.GetByID(ctx, matchID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.NotFound(op, "比赛不存在")
		}
		s.logger.Error("查询比赛失败", zap.String("id", matchID), zap.Error(err))
		return nil, err
	}
	return match, nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func toMatchResponse(m *model.Match) *dto.MatchResponse {
	resp := &dto.MatchResponse{
		ID:            m.MatchID,
		TournamentID:  m.TournamentID,
		Team1ID:       m.Team1ID,
		Team2ID:       m.Team2ID,
		MatchDatetime: formatTime(m.MatchDatetime),
		Field:         m.Field,
		Status:        m.Status,
		Team1Score:    m.Team1Score,
		Team2Score:    m.Team2Score,
	}
	if m.Team1 != nil {
		resp.Team1Name = m.Team1.Name
	}
	if m.Team2 != nil {
		resp.Team2Name = m.Team2.Name
	}
	return resp
}

func toSpiritScoreResponse(sc *model.SpiritScore) *dto.SpiritScoreResponse {
	sub := policy.SpiritSubmission{
		RulesKnowledge: sc.RulesKnowledge,
		Fouls:          sc.Fouls,
		BodyContact:    sc.BodyContact,
		Fairness:       sc.Fairness,
		Attitude:       sc.Attitude,
		Communication:  sc.Communication,
	}
	return &dto.SpiritScoreResponse{
		ID:                sc.SpiritScoreID,
		MatchID:           sc.MatchID,
		SubmittedByTeamID: sc.SubmittedByTeamID,
		OpponentTeamID:    sc.OpponentTeamID,
		RulesKnowledge:    sc.RulesKnowledge,
		Fouls:             sc.Fouls,
		BodyContact:       sc.BodyContact,
		Fairness:          sc.Fairness,
		Attitude:          sc.Attitude,
		Communication:     sc.Communication,
		Average:           sub.Average(),
		Comments:          sc.Comments,
		CreatedAt:         formatTime(sc.CreatedAt),
	}
}
