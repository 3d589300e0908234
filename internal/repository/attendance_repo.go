package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Nisheeka1604/yultimate/internal/model"
)

// AttendanceRepository 出勤记录数据访问接口（只追加）
type AttendanceRepository interface {
	// Create 违反 (session_id, student_id) 唯一约束时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, record *model.SessionAttendance) error
	Exists(ctx context.Context, sessionID, studentID string) (bool, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.SessionAttendance, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.SessionAttendance, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.SessionAttendance) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) Exists(ctx context.Context, sessionID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SessionAttendance{}).
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *attendanceRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SessionAttendance{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *attendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]model.SessionAttendance, error) {
	var records []model.SessionAttendance
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.SessionAttendance, error) {
	var records []model.SessionAttendance
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&records).Error
	return records, err
}
