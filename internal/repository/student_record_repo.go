package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
)

// RecordFilter 家访、评估、报告列表的筛选条件
type RecordFilter struct {
	StudentID string
	CoachID   string
}

func (f RecordFilter) apply(db *gorm.DB) *gorm.DB {
	if f.StudentID != "" {
		db = db.Where("student_id = ?", f.StudentID)
	}
	if f.CoachID != "" {
		db = db.Where("coach_id = ?", f.CoachID)
	}
	return db
}

// ── 家访 ──

// HomeVisitRepository 家访记录数据访问接口（只追加）
type HomeVisitRepository interface {
	Create(ctx context.Context, visit *model.HomeVisit) error
	List(ctx context.Context, filter RecordFilter) ([]model.HomeVisit, error)
	CountByStudent(ctx context.Context, studentID string) (int64, error)
}

type homeVisitRepo struct {
	db *gorm.DB
}

// NewHomeVisitRepo 创建 HomeVisitRepository 实例
func NewHomeVisitRepo(db *gorm.DB) HomeVisitRepository {
	return &homeVisitRepo{db: db}
}

func (r *homeVisitRepo) Create(ctx context.Context, visit *model.HomeVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *homeVisitRepo) List(ctx context.Context, filter RecordFilter) ([]model.HomeVisit, error) {
	var visits []model.HomeVisit
	err := filter.apply(r.db.WithContext(ctx)).
		Order("visit_date DESC").
		Find(&visits).Error
	return visits, err
}

func (r *homeVisitRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.HomeVisit{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}

// ── LSAS 评估 ──

// AssessmentRepository LSAS 评估数据访问接口（只追加）
type AssessmentRepository interface {
	Create(ctx context.Context, a *model.LSASAssessment) error
	// ListByStudent 按评估日期降序
	ListByStudent(ctx context.Context, studentID string) ([]model.LSASAssessment, error)
}

type assessmentRepo struct {
	db *gorm.DB
}

// NewAssessmentRepo 创建 AssessmentRepository 实例
func NewAssessmentRepo(db *gorm.DB) AssessmentRepository {
	return &assessmentRepo{db: db}
}

func (r *assessmentRepo) Create(ctx context.Context, a *model.LSASAssessment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assessmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.LSASAssessment, error) {
	var list []model.LSASAssessment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assessment_date DESC").
		Find(&list).Error
	return list, err
}

// ── 进度报告 ──

// ProgressReportRepository 进度报告数据访问接口（只追加）
type ProgressReportRepository interface {
	Create(ctx context.Context, report *model.ProgressReport) error
	List(ctx context.Context, filter RecordFilter) ([]model.ProgressReport, error)
	CountByStudent(ctx context.Context, studentID string) (int64, error)
}

type progressReportRepo struct {
	db *gorm.DB
}

// NewProgressReportRepo 创建 ProgressReportRepository 实例
func NewProgressReportRepo(db *gorm.DB) ProgressReportRepository {
	return &progressReportRepo{db: db}
}

func (r *progressReportRepo) Create(ctx context.Context, report *model.ProgressReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *progressReportRepo) List(ctx context.Context, filter RecordFilter) ([]model.ProgressReport, error) {
	var reports []model.ProgressReport
	err := filter.apply(r.db.WithContext(ctx)).
		Order("report_date DESC").
		Find(&reports).Error
	return reports, err
}

func (r *progressReportRepo) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProgressReport{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	return count, err
}
