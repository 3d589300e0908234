package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/dto"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

func setupMatchService(cache LeaderboardCache) (MatchService, *mockRepos) {
	repo, m := newMockRepos()
	return NewMatchService(config.DefaultEngineConfig(), repo, cache, zap.NewNop()), m
}

func spiritRequest(teamID string, scores ...int) *dto.SubmitSpiritScoreRequest {
	return &dto.SubmitSpiritScoreRequest{
		SubmittedByTeamID: teamID,
		RulesKnowledge:    intPtr(scores[0]),
		Fouls:             intPtr(scores[1]),
		BodyContact:       intPtr(scores[2]),
		Fairness:          intPtr(scores[3]),
		Attitude:          intPtr(scores[4]),
		Communication:     intPtr(scores[5]),
	}
}

// ── Create ──

func TestMatchService_Create_RequiresApprovedTeams(t *testing.T) {
	svc, m := setupMatchService(nil)
	admin := newActor(policy.RoleAdmin)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", newID(), policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "B", newID(), policy.RegistrationPending)

	_, err := svc.Create(context.Background(), admin, tr.TournamentID, &dto.CreateMatchRequest{
		Team1ID: a.TeamID, Team2ID: b.TeamID, MatchDatetime: time.Now(),
	})
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestMatchService_Create_SameTeam(t *testing.T) {
	svc, m := setupMatchService(nil)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", newID(), policy.RegistrationApproved)

	_, err := svc.Create(context.Background(), newActor(policy.RoleAdmin), tr.TournamentID, &dto.CreateMatchRequest{
		Team1ID: a.TeamID, Team2ID: a.TeamID, MatchDatetime: time.Now(),
	})
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestMatchService_Create_Success(t *testing.T) {
	svc, m := setupMatchService(nil)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", newID(), policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "B", newID(), policy.RegistrationApproved)

	resp, err := svc.Create(context.Background(), newActor(policy.RoleAdmin), tr.TournamentID, &dto.CreateMatchRequest{
		Team1ID: a.TeamID, Team2ID: b.TeamID, MatchDatetime: time.Now(), Field: "Field 2",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != string(policy.MatchScheduled) || resp.Team1Name != "A" || resp.Team2Name != "B" {
		t.Errorf("响应不符合预期: %+v", resp)
	}
}

// ── RecordScore ──

func TestMatchService_RecordScore_CompletesMatch(t *testing.T) {
	for _, from := range []policy.MatchStatus{policy.MatchScheduled, policy.MatchInProgress} {
		t.Run(string(from), func(t *testing.T) {
			svc, m := setupMatchService(nil)
			tr := seedTournament(t, m, policy.TournamentInProgress)
			match := seedMatch(t, m, tr.TournamentID, newID(), newID(), from)

			resp, err := svc.RecordScore(context.Background(), newActor(policy.RoleAdmin), match.MatchID, 15, 13)
			if err != nil {
				t.Fatalf("RecordScore 应成功: %v", err)
			}
			if resp.Status != string(policy.MatchCompleted) {
				t.Errorf("期望 completed，实际=%s", resp.Status)
			}
			stored, _ := m.matches.GetByID(context.Background(), match.MatchID)
			if stored.Status != string(policy.MatchCompleted) || *stored.Team1Score != 15 || *stored.Team2Score != 13 {
				t.Errorf("持久化结果不符合预期: status=%s", stored.Status)
			}
		})
	}
}

func TestMatchService_RecordScore_AlreadyCompleted(t *testing.T) {
	svc, m := setupMatchService(nil)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	match := seedMatch(t, m, tr.TournamentID, newID(), newID(), policy.MatchCompleted)

	_, err := svc.RecordScore(context.Background(), newActor(policy.RoleAdmin), match.MatchID, 1, 0)
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestMatchService_RecordScore_Negative(t *testing.T) {
	svc, m := setupMatchService(nil)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	match := seedMatch(t, m, tr.TournamentID, newID(), newID(), policy.MatchScheduled)

	_, err := svc.RecordScore(context.Background(), newActor(policy.RoleAdmin), match.MatchID, -1, 3)
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestMatchService_Start(t *testing.T) {
	svc, m := setupMatchService(nil)
	admin := newActor(policy.RoleAdmin)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	match := seedMatch(t, m, tr.TournamentID, newID(), newID(), policy.MatchScheduled)

	if _, err := svc.Start(context.Background(), admin, match.MatchID); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, err := svc.Start(context.Background(), admin, match.MatchID); !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Errorf("重复开始期望 ErrInvalidTransition，实际: %v", err)
	}
}

// ── SubmitSpiritScore ──

type spiritFixture struct {
	svc        MatchService
	m          *mockRepos
	tournament string
	captainA   policy.Actor
	teamA      string
	teamB      string
	match      string
}

func newSpiritFixture(t *testing.T, status policy.MatchStatus) spiritFixture {
	t.Helper()
	svc, m := setupMatchService(nil)
	captainA := newActor(policy.RoleStudent)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", captainA.ID, policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "B", newID(), policy.RegistrationApproved)
	match := seedMatch(t, m, tr.TournamentID, a.TeamID, b.TeamID, status)
	return spiritFixture{svc: svc, m: m, tournament: tr.TournamentID, captainA: captainA, teamA: a.TeamID, teamB: b.TeamID, match: match.MatchID}
}

func TestMatchService_SubmitSpiritScore_Success(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)

	resp, err := f.svc.SubmitSpiritScore(context.Background(), f.captainA, f.match, spiritRequest(f.teamA, 4, 4, 3, 4, 4, 3))
	if err != nil {
		t.Fatalf("SubmitSpiritScore 应成功: %v", err)
	}
	if resp.OpponentTeamID != f.teamB {
		t.Errorf("期望被评价球队为 B，实际=%s", resp.OpponentTeamID)
	}
	if math.Abs(resp.Average-22.0/6) > 1e-9 {
		t.Errorf("期望平均分 %.4f，实际=%.4f", 22.0/6, resp.Average)
	}
}

func TestMatchService_SubmitSpiritScore_MatchNotCompleted(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchInProgress)

	_, err := f.svc.SubmitSpiritScore(context.Background(), f.captainA, f.match, spiritRequest(f.teamA, 4, 4, 4, 4, 4, 4))
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestMatchService_SubmitSpiritScore_NotParticipant(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)

	_, err := f.svc.SubmitSpiritScore(context.Background(), newActor(policy.RoleStudent), f.match, spiritRequest(f.teamA, 4, 4, 4, 4, 4, 4))
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}
}

func TestMatchService_SubmitSpiritScore_PlayerCanSubmit(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)
	player := newActor(policy.RoleStudent)
	_ = f.m.teams.AddPlayers(context.Background(), toPlayers(f.teamA, []dto.PlayerInput{{Name: "P", UserID: &player.ID}}))

	if _, err := f.svc.SubmitSpiritScore(context.Background(), player, f.match, spiritRequest(f.teamA, 2, 2, 2, 2, 2, 2)); err != nil {
		t.Errorf("球员提交应成功: %v", err)
	}
}

func TestMatchService_SubmitSpiritScore_TeamNotInMatch(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)
	other := seedTeam(t, f.m, f.tournament, "C", f.captainA.ID, policy.RegistrationApproved)

	_, err := f.svc.SubmitSpiritScore(context.Background(), f.captainA, f.match, spiritRequest(other.TeamID, 4, 4, 4, 4, 4, 4))
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestMatchService_SubmitSpiritScore_OutOfRange(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)

	_, err := f.svc.SubmitSpiritScore(context.Background(), f.captainA, f.match, spiritRequest(f.teamA, 5, 4, 4, 4, 4, 4))
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望 ErrValidation，实际: %v", err)
	}
}

func TestMatchService_SubmitSpiritScore_Duplicate(t *testing.T) {
	f := newSpiritFixture(t, policy.MatchCompleted)
	ctx := context.Background()

	if _, err := f.svc.SubmitSpiritScore(ctx, f.captainA, f.match, spiritRequest(f.teamA, 4, 4, 4, 4, 4, 4)); err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	_, err := f.svc.SubmitSpiritScore(ctx, f.captainA, f.match, spiritRequest(f.teamA, 3, 3, 3, 3, 3, 3))
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Errorf("期望 ErrConflict，实际: %v", err)
	}
}

// ── Leaderboard ──

func TestMatchService_Leaderboard_TwoSubmissionsForSameTeam(t *testing.T) {
	cache := newMemoryCache()
	svc, m := setupMatchService(cache)
	ctx := context.Background()

	captainA := newActor(policy.RoleStudent)
	captainC := newActor(policy.RoleStudent)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", captainA.ID, policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "B", newID(), policy.RegistrationApproved)
	c := seedTeam(t, m, tr.TournamentID, "C", captainC.ID, policy.RegistrationApproved)
	m1 := seedMatch(t, m, tr.TournamentID, a.TeamID, b.TeamID, policy.MatchCompleted)
	m2 := seedMatch(t, m, tr.TournamentID, c.TeamID, b.TeamID, policy.MatchCompleted)

	if _, err := svc.SubmitSpiritScore(ctx, captainA, m1.MatchID, spiritRequest(a.TeamID, 4, 4, 3, 4, 4, 3)); err != nil {
		t.Fatalf("A 提交失败: %v", err)
	}
	if _, err := svc.SubmitSpiritScore(ctx, captainC, m2.MatchID, spiritRequest(c.TeamID, 4, 4, 4, 4, 4, 4)); err != nil {
		t.Fatalf("C 提交失败: %v", err)
	}

	// 其他赛事的提交不计入
	other := seedTournament(t, m, policy.TournamentInProgress)
	captainX := newActor(policy.RoleStudent)
	x := seedTeam(t, m, other.TournamentID, "X", captainX.ID, policy.RegistrationApproved)
	otherMatch := seedMatch(t, m, other.TournamentID, x.TeamID, b.TeamID, policy.MatchCompleted)
	if _, err := svc.SubmitSpiritScore(ctx, captainX, otherMatch.MatchID, spiritRequest(x.TeamID, 0, 0, 0, 0, 0, 0)); err != nil {
		t.Fatalf("X 提交失败: %v", err)
	}

	entries, err := svc.ComputeSpiritLeaderboard(ctx, tr.TournamentID)
	if err != nil {
		t.Fatalf("ComputeSpiritLeaderboard 应成功: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("无提交的球队应被省略，期望 1 条，实际=%d", len(entries))
	}
	got := entries[0]
	if got.TeamID != b.TeamID || got.TeamName != "B" || got.Rank != 1 || got.Submissions != 2 {
		t.Errorf("排行榜条目不符合预期: %+v", got)
	}
	want := (22.0/6 + 24.0/6) / 2
	if math.Abs(got.AverageScore-want) > 1e-9 {
		t.Errorf("期望平均分 %.6f，实际=%.6f", want, got.AverageScore)
	}

	// 第二次读取命中缓存
	if _, err := svc.ComputeSpiritLeaderboard(ctx, tr.TournamentID); err != nil {
		t.Fatalf("再次读取失败: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("期望缓存命中 1 次，实际=%d", cache.hits)
	}
}

func TestMatchService_Leaderboard_InvalidatedOnScoreWrite(t *testing.T) {
	cache := newMemoryCache()
	svc, m := setupMatchService(cache)
	ctx := context.Background()
	tr := seedTournament(t, m, policy.TournamentInProgress)

	if _, err := svc.ComputeSpiritLeaderboard(ctx, tr.TournamentID); err != nil {
		t.Fatalf("计算失败: %v", err)
	}
	if _, ok, _ := cache.GetLeaderboard(ctx, tr.TournamentID); !ok {
		t.Fatal("计算结果应写入缓存")
	}

	match := seedMatch(t, m, tr.TournamentID, newID(), newID(), policy.MatchScheduled)
	if _, err := svc.RecordScore(ctx, newActor(policy.RoleAdmin), match.MatchID, 1, 0); err != nil {
		t.Fatalf("RecordScore 失败: %v", err)
	}
	if _, ok, _ := cache.GetLeaderboard(ctx, tr.TournamentID); ok {
		t.Error("记录比分后缓存应失效")
	}
}

// seedLeaderboard 一场已完赛比赛与一次提交，返回赛事 ID
func seedLeaderboard(t *testing.T, svc MatchService, m *mockRepos) string {
	t.Helper()
	captain := newActor(policy.RoleStudent)
	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "A", captain.ID, policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "B", newID(), policy.RegistrationApproved)
	match := seedMatch(t, m, tr.TournamentID, a.TeamID, b.TeamID, policy.MatchCompleted)
	if _, err := svc.SubmitSpiritScore(context.Background(), captain, match.MatchID, spiritRequest(a.TeamID, 3, 3, 3, 3, 3, 3)); err != nil {
		t.Fatalf("提交精神分失败: %v", err)
	}
	return tr.TournamentID
}

func TestMatchService_Leaderboard_FailsWholeOnAnyFetchError(t *testing.T) {
	tests := []struct {
		name   string
		inject func(repo *repository.Repository)
	}{
		{"精神分", func(repo *repository.Repository) {
			repo.SpiritScore = hookedSpiritScoreRepo{
				SpiritScoreRepository: repo.SpiritScore,
				before:                func(context.Context) error { return errInjected },
			}
		}},
		{"球队名称", func(repo *repository.Repository) {
			repo.Team = failingTeamRepo{repo.Team}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, m := newMockRepos()
			cache := newMemoryCache()
			svc := NewMatchService(config.DefaultEngineConfig(), repo, cache, zap.NewNop())
			tournamentID := seedLeaderboard(t, svc, m)
			tt.inject(repo)

			entries, err := svc.ComputeSpiritLeaderboard(context.Background(), tournamentID)
			if entries != nil {
				t.Errorf("读取失败时不应返回部分排行榜: %+v", entries)
			}
			if !errors.Is(err, errInjected) {
				t.Errorf("期望原样返回仓储错误，实际: %v", err)
			}
			if _, ok, _ := cache.GetLeaderboard(context.Background(), tournamentID); ok {
				t.Error("失败的计算不应写入缓存")
			}
		})
	}
}

func TestMatchService_Leaderboard_InvalidatedDuringComputeNotStored(t *testing.T) {
	repo, m := newMockRepos()
	cache := newMemoryCache()
	svc := NewMatchService(config.DefaultEngineConfig(), repo, cache, zap.NewNop())
	ctx := context.Background()
	tournamentID := seedLeaderboard(t, svc, m)

	// 读取精神分时模拟另一请求写入比分并清除缓存
	fired := false
	repo.SpiritScore = hookedSpiritScoreRepo{
		SpiritScoreRepository: repo.SpiritScore,
		before: func(ctx context.Context) error {
			if !fired {
				fired = true
				return cache.InvalidateLeaderboard(ctx, tournamentID)
			}
			return nil
		},
	}

	entries, err := svc.ComputeSpiritLeaderboard(ctx, tournamentID)
	if err != nil {
		t.Fatalf("ComputeSpiritLeaderboard 应成功: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("期望 1 条排行榜记录，实际=%d", len(entries))
	}
	if _, ok, _ := cache.GetLeaderboard(ctx, tournamentID); ok {
		t.Fatal("计算期间缓存已失效，结果不应写回")
	}

	// 下一次计算代数未变化，正常写入
	if _, err := svc.ComputeSpiritLeaderboard(ctx, tournamentID); err != nil {
		t.Fatalf("再次计算失败: %v", err)
	}
	if _, ok, _ := cache.GetLeaderboard(ctx, tournamentID); !ok {
		t.Error("未发生失效的计算应写入缓存")
	}
}
