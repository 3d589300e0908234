package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Nisheeka1604/yultimate/internal/model"
	"github.com/Nisheeka1604/yultimate/internal/policy"
	"github.com/Nisheeka1604/yultimate/internal/repository"
	pkgerrors "github.com/Nisheeka1604/yultimate/pkg/errors"
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportLeaderboard 赛事精神分排行榜导出为 Excel，仅管理员
	ExportLeaderboard(ctx context.Context, actor policy.Actor, tournamentID string) (*bytes.Buffer, string, error)
	// ExportProgress 学员指标、评估与进度报告导出为 Excel
	ExportProgress(ctx context.Context, actor policy.Actor, studentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	match   MatchService
	metrics MetricsService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, match MatchService, metrics MetricsService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, match: match, metrics: metrics, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportLeaderboard
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet，标题行为赛事名称，表头 | 排名 | 球队 | 平均分 | 提交次数 |

func (s *exportService) ExportLeaderboard(ctx context.Context, actor policy.Actor, tournamentID string) (*bytes.Buffer, string, error) {
	const op = "export.ExportLeaderboard"
	if err := policy.Authorize(actor, policy.ActionExportLeaderboard, policy.Subject{}); err != nil {
		return nil, "", err
	}

	tournament, err := s.repo.Tournament.GetByID(ctx, tournamentID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", pkgerrors.NotFound(op, "赛事不存在")
		}
		s.logger.Error("查询赛事失败", zap.String("id", tournamentID), zap.Error(err))
		return nil, "", err
	}

	entries, err := s.match.ComputeSpiritLeaderboard(ctx, tournamentID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "精神分排行榜"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "D", 12)

	header := headerStyle(f)
	f.SetCellValue(sheet, "A1", tournament.Title+" 精神分排行榜")
	f.MergeCell(sheet, "A1", "D1")
	f.SetCellStyle(sheet, "A1", "A1", header)

	for i, title := range []string{"排名", "球队", "平均分", "提交次数"} {
		f.SetCellValue(sheet, cell(colName(i), 2), title)
	}
	f.SetCellStyle(sheet, "A2", "D2", header)

	row := 3
	for _, e := range entries {
		f.SetCellValue(sheet, cell("A", row), e.Rank)
		f.SetCellValue(sheet, cell("B", row), e.TeamName)
		f.SetCellValue(sheet, cell("C", row), fmt.Sprintf("%.2f", e.AverageScore))
		f.SetCellValue(sheet, cell("D", row), e.Submissions)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("tournament_id", tournamentID), zap.Error(err))
		return nil, "", err
	}
	return buf, exportFilename("spirit-leaderboard", tournament.Title), nil
}

// ═══════════════════════════════════════════════════════════
// ExportProgress
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "指标"：当前派生指标
//   - Sheet "评估"：LSAS 评估，日期倒序
//   - Sheet "进度报告"：历次报告快照，日期倒序

func (s *exportService) ExportProgress(ctx context.Context, actor policy.Actor, studentID string) (*bytes.Buffer, string, error) {
	const op = "export.ExportProgress"
	profile, err := s.repo.StudentProfile.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", pkgerrors.NotFound(op, "学员不存在")
		}
		s.logger.Error("查询学员失败", zap.String("id", studentID), zap.Error(err))
		return nil, "", err
	}
	if err := authorizeStudentView(actor, profile); err != nil {
		return nil, "", err
	}

	snapshot, err := s.metrics.Snapshot(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	assessments, err := s.repo.Assessment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询评估失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", err
	}
	reports, err := s.repo.ProgressReport.List(ctx, repository.RecordFilter{StudentID: studentID})
	if err != nil {
		s.logger.Error("查询进度报告失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", err
	}

	name := studentName(profile)

	f := excelize.NewFile()
	defer f.Close()
	header := headerStyle(f)

	// 1. 指标
	summary := "指标"
	idx, _ := f.NewSheet(summary)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.SetColWidth(summary, "A", "A", 20)
	f.SetColWidth(summary, "B", "B", 16)
	f.SetCellValue(summary, "A1", name+" 学习进度")
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "A1", header)

	latest := "-"
	if snapshot.LatestAssessmentScore != nil {
		latest = fmt.Sprintf("%d", *snapshot.LatestAssessmentScore)
	}
	rows := [][2]interface{}{
		{"出勤率 (%)", snapshot.AttendanceRate},
		{"家访次数", snapshot.HomeVisitsCount},
		{"最新 LSAS 分数", latest},
		{"进度报告数", snapshot.ReportsCount},
	}
	for i, r := range rows {
		f.SetCellValue(summary, cell("A", i+2), r[0])
		f.SetCellValue(summary, cell("B", i+2), r[1])
	}

	// 2. 评估
	sheet := "评估"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "C", "C", 40)
	for i, title := range []string{"日期", "分数", "备注"} {
		f.SetCellValue(sheet, cell(colName(i), 1), title)
	}
	f.SetCellStyle(sheet, "A1", "C1", header)
	for i, a := range assessments {
		f.SetCellValue(sheet, cell("A", i+2), a.AssessmentDate.Format("2006-01-02"))
		f.SetCellValue(sheet, cell("B", i+2), a.Score)
		f.SetCellValue(sheet, cell("C", i+2), a.Notes)
	}

	// 3. 进度报告
	sheet = "进度报告"
	f.NewSheet(sheet)
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "E", "F", 40)
	for i, title := range []string{"日期", "出勤率 (%)", "家访次数", "LSAS 分数", "总结", "建议"} {
		f.SetCellValue(sheet, cell(colName(i), 1), title)
	}
	f.SetCellStyle(sheet, "A1", "F1", header)
	for i, r := range reports {
		row := i + 2
		score := "-"
		if r.LatestAssessmentScore != nil {
			score = fmt.Sprintf("%d", *r.LatestAssessmentScore)
		}
		f.SetCellValue(sheet, cell("A", row), r.ReportDate.Format("2006-01-02"))
		f.SetCellValue(sheet, cell("B", row), r.AttendanceRate)
		f.SetCellValue(sheet, cell("C", row), r.HomeVisitsCount)
		f.SetCellValue(sheet, cell("D", row), score)
		f.SetCellValue(sheet, cell("E", row), r.Summary)
		f.SetCellValue(sheet, cell("F", row), r.Recommendations)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", err
	}
	return buf, exportFilename("progress", name), nil
}

// ── 辅助函数 ──

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

// exportFilename 形如 spirit-leaderboard-summer-open.xlsx；标题无法转写时只保留前缀
func exportFilename(prefix, title string) string {
	if s := slug.Make(title); s != "" {
		return prefix + "-" + s + ".xlsx"
	}
	return prefix + ".xlsx"
}

func studentName(p *model.StudentProfile) string {
	if p.User != nil && p.User.FullName != "" {
		return p.User.FullName
	}
	return p.StudentID
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
