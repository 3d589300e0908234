package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/config"
	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

func setupExportService() (ExportService, *mockRepos) {
	repo, m := newMockRepos()
	logger := zap.NewNop()
	match := NewMatchService(config.DefaultEngineConfig(), repo, nil, logger)
	metrics := NewMetricsService(repo, logger)
	return NewExportService(repo, match, metrics, logger), m
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容不是合法的 xlsx: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportService_ExportLeaderboard(t *testing.T) {
	svc, m := setupExportService()
	ctx := context.Background()

	tr := seedTournament(t, m, policy.TournamentInProgress)
	a := seedTeam(t, m, tr.TournamentID, "Air Bandits", newID(), policy.RegistrationApproved)
	b := seedTeam(t, m, tr.TournamentID, "Disc Doctors", newID(), policy.RegistrationApproved)
	match := seedMatch(t, m, tr.TournamentID, a.TeamID, b.TeamID, policy.MatchCompleted)
	_ = m.spiritScores.Create(ctx, &model.SpiritScore{
		MatchID: match.MatchID, SubmittedByTeamID: a.TeamID, OpponentTeamID: b.TeamID, SubmittedBy: a.CaptainID,
		RulesKnowledge: 4, Fouls: 4, BodyContact: 4, Fairness: 4, Attitude: 4, Communication: 4,
	})

	buf, filename, err := svc.ExportLeaderboard(ctx, newActor(policy.RoleAdmin), tr.TournamentID)
	if err != nil {
		t.Fatalf("ExportLeaderboard 应成功: %v", err)
	}
	if filename != "spirit-leaderboard-summer-open.xlsx" {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	f := openWorkbook(t, buf)
	sheet := "精神分排行榜"
	if v, _ := f.GetCellValue(sheet, "A1"); v != "Summer Open 精神分排行榜" {
		t.Errorf("标题不符合预期: %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "B3"); v != "Disc Doctors" {
		t.Errorf("第一名应为 Disc Doctors，实际: %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "C3"); v != "4.00" {
		t.Errorf("平均分应为 4.00，实际: %q", v)
	}
	if v, _ := f.GetCellValue(sheet, "A4"); v != "" {
		t.Errorf("无提交的球队不应出现在排行榜中，实际: %q", v)
	}
}

func TestExportService_ExportLeaderboard_AdminOnly(t *testing.T) {
	svc, m := setupExportService()
	tr := seedTournament(t, m, policy.TournamentInProgress)

	_, _, err := svc.ExportLeaderboard(context.Background(), newActor(policy.RoleCoach), tr.TournamentID)
	if !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("期望 ErrPermissionDenied，实际: %v", err)
	}

	_, _, err = svc.ExportLeaderboard(context.Background(), newActor(policy.RoleAdmin), newID())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestExportService_ExportProgress(t *testing.T) {
	svc, m := setupExportService()
	ctx := context.Background()
	coach := newActor(policy.RoleCoach)
	student, profile := seedStudent(t, m, coach.ID)

	_ = m.assessments.Create(ctx, &model.LSASAssessment{
		StudentID: profile.StudentID, CoachID: coach.ID, Score: 72,
		AssessmentDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})

	buf, _, err := svc.ExportProgress(ctx, student, profile.StudentID)
	if err != nil {
		t.Fatalf("学员导出自己的进度应成功: %v", err)
	}
	f := openWorkbook(t, buf)
	if v, _ := f.GetCellValue("指标", "B4"); v != "72" {
		t.Errorf("最新 LSAS 分数应为 72，实际: %q", v)
	}
	if v, _ := f.GetCellValue("评估", "A2"); v != "2026-09-01" {
		t.Errorf("评估日期不符合预期: %q", v)
	}
	if idx, _ := f.GetSheetIndex("进度报告"); idx < 0 {
		t.Error("应包含进度报告 Sheet")
	}

	if _, _, err := svc.ExportProgress(ctx, newActor(policy.RoleCoach), profile.StudentID); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("非负责教练期望 ErrPermissionDenied，实际: %v", err)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		prefix, title, want string
	}{
		{"progress", "Asha Rao", "progress-asha-rao.xlsx"},
		{"spirit-leaderboard", "Summer Open 2026!", "spirit-leaderboard-summer-open-2026.xlsx"},
		{"progress", "", "progress.xlsx"},
	}
	for _, tt := range tests {
		if got := exportFilename(tt.prefix, tt.title); got != tt.want {
			t.Errorf("exportFilename(%q, %q) = %q, 期望 %q", tt.prefix, tt.title, got, tt.want)
		}
	}
}
