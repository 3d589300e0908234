//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=yultimate password=yultimate dbname=yultimate_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.User{},
		&model.StudentProfile{},
		&model.Tournament{},
		&model.Team{},
		&model.Player{},
		&model.Match{},
		&model.SpiritScore{},
		&model.CoachingSession{},
		&model.SessionAttendance{},
		&model.Notification{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTournament 创建管理员、赛事与两支已通过的球队
func setupTournament(t *testing.T) (admin *model.User, tour *model.Tournament, team1, team2 *model.Team, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	admin = &model.User{
		Email:        fmt.Sprintf("admin%d@test.org", suffix),
		FullName:     "测试管理员",
		PasswordHash: "$2a$10$placeholder",
		Role:         "admin",
	}
	if err := testDB.WithContext(ctx).Create(admin).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	tour = &model.Tournament{
		Title:     fmt.Sprintf("测试赛事-%d", suffix),
		Location:  "主场",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:    "registration_open",
	}
	if err := testDB.WithContext(ctx).Create(tour).Error; err != nil {
		t.Fatalf("创建赛事失败: %v", err)
	}

	team1 = &model.Team{TournamentID: tour.TournamentID, Name: "Team A", CaptainID: admin.UserID, RegistrationStatus: "approved", ApprovedBy: &admin.UserID}
	team2 = &model.Team{TournamentID: tour.TournamentID, Name: "Team B", CaptainID: admin.UserID, RegistrationStatus: "approved", ApprovedBy: &admin.UserID}
	for _, team := range []*model.Team{team1, team2} {
		if err := testDB.WithContext(ctx).Create(team).Error; err != nil {
			t.Fatalf("创建球队失败: %v", err)
		}
	}

	cleanup = func() {
		testDB.Exec("DELETE FROM spirit_scores WHERE submitted_by_team_id IN ?", []string{team1.TeamID, team2.TeamID})
		testDB.Exec("DELETE FROM matches WHERE tournament_id = ?", tour.TournamentID)
		testDB.Exec("DELETE FROM players WHERE team_id IN ?", []string{team1.TeamID, team2.TeamID})
		testDB.Exec("DELETE FROM teams WHERE tournament_id = ?", tour.TournamentID)
		testDB.Unscoped().Where("tournament_id = ?", tour.TournamentID).Delete(&model.Tournament{})
		testDB.Unscoped().Where("user_id = ?", admin.UserID).Delete(&model.User{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	admin, tour, _, _, cleanup := setupTournament(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var created *model.Team
	sentinel := errors.New("中止")
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		created = &model.Team{TournamentID: tour.TournamentID, Name: "回滚队", CaptainID: admin.UserID, RegistrationStatus: "pending"}
		if err := txRepo.Team.Create(ctx, created); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("期望返回 fn 的错误，得到: %v", err)
	}

	if _, err := repo.Team.GetByID(ctx, created.TeamID); err == nil {
		t.Fatal("期望回滚后查不到球队，但实际查到了")
	}
}

func TestTransaction_Commit(t *testing.T) {
	admin, tour, _, _, cleanup := setupTournament(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	team := &model.Team{TournamentID: tour.TournamentID, Name: "提交队", CaptainID: admin.UserID, RegistrationStatus: "pending"}
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Team.Create(ctx, team); err != nil {
			return err
		}
		return txRepo.Team.AddPlayers(ctx, []model.Player{{TeamID: team.TeamID, Name: "球员一"}})
	})
	if err != nil {
		t.Fatalf("事务提交失败: %v", err)
	}

	found, err := repo.Team.GetByID(ctx, team.TeamID)
	if err != nil {
		t.Fatalf("提交后查询球队失败: %v", err)
	}
	if len(found.Players) != 1 {
		t.Errorf("期望 1 名球员，得到 %d", len(found.Players))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Expected-state Updates
// ═══════════════════════════════════════════════════════════

func TestTeamRegistration_StaleExpectedStatus(t *testing.T) {
	admin, tour, _, _, cleanup := setupTournament(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	team := &model.Team{TournamentID: tour.TournamentID, Name: "候补队", CaptainID: admin.UserID, RegistrationStatus: "waitlisted"}
	if err := repo.Team.Create(ctx, team); err != nil {
		t.Fatalf("创建球队失败: %v", err)
	}

	if err := repo.Team.UpdateRegistration(ctx, team.TeamID, "waitlisted", "approved", admin.UserID); err != nil {
		t.Fatalf("第一次审批应成功: %v", err)
	}

	got, _ := repo.Team.GetByID(ctx, team.TeamID)
	if got.RegistrationStatus != "approved" || got.ApprovedBy == nil || *got.ApprovedBy != admin.UserID {
		t.Errorf("审批后状态不一致: %+v", got)
	}

	// 基于过期状态的第二次审批必须失败
	err := repo.Team.UpdateRegistration(ctx, team.TeamID, "waitlisted", "approved", admin.UserID)
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestMatchRecordScore_CompletesAtomically(t *testing.T) {
	admin, tour, team1, team2, cleanup := setupTournament(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	match := &model.Match{
		TournamentID:  tour.TournamentID,
		Team1ID:       team1.TeamID,
		Team2ID:       team2.TeamID,
		MatchDatetime: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:        "scheduled",
	}
	if err := repo.Match.Create(ctx, match); err != nil {
		t.Fatalf("创建比赛失败: %v", err)
	}

	if err := repo.Match.RecordScore(ctx, match.MatchID, "scheduled", 15, 13, admin.UserID); err != nil {
		t.Fatalf("记录比分失败: %v", err)
	}

	got, _ := repo.Match.GetByID(ctx, match.MatchID)
	if got.Status != "completed" {
		t.Errorf("期望 completed，得到 %s", got.Status)
	}
	if got.Team1Score == nil || *got.Team1Score != 15 || got.Team2Score == nil || *got.Team2Score != 13 {
		t.Errorf("比分未写入: %v %v", got.Team1Score, got.Team2Score)
	}

	if err := repo.Match.RecordScore(ctx, match.MatchID, "scheduled", 1, 1, admin.UserID); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Unique Constraint
// ═══════════════════════════════════════════════════════════

func TestSpiritScore_DuplicateRejected(t *testing.T) {
	admin, tour, team1, team2, cleanup := setupTournament(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s1, s2 := 10, 8
	match := &model.Match{
		TournamentID:  tour.TournamentID,
		Team1ID:       team1.TeamID,
		Team2ID:       team2.TeamID,
		MatchDatetime: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:        "completed",
		Team1Score:    &s1,
		Team2Score:    &s2,
	}
	if err := repo.Match.Create(ctx, match); err != nil {
		t.Fatalf("创建比赛失败: %v", err)
	}

	newScore := func() *model.SpiritScore {
		return &model.SpiritScore{
			MatchID:           match.MatchID,
			SubmittedByTeamID: team1.TeamID,
			OpponentTeamID:    team2.TeamID,
			RulesKnowledge:    3, Fouls: 3, BodyContact: 3, Fairness: 3, Attitude: 3, Communication: 3,
			SubmittedBy: admin.UserID,
		}
	}

	if err := repo.SpiritScore.Create(ctx, newScore()); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}
	err := repo.SpiritScore.Create(ctx, newScore())
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 gorm.ErrDuplicatedKey，得到: %v", err)
	}

	scores, err := repo.SpiritScore.ListByMatchIDs(ctx, []string{match.MatchID})
	if err != nil {
		t.Fatalf("查询精神分失败: %v", err)
	}
	if len(scores) != 1 {
		t.Errorf("期望 1 条精神分，得到 %d", len(scores))
	}
}
