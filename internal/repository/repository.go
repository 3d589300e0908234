package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User           UserRepository
	StudentProfile StudentProfileRepository
	Tournament     TournamentRepository
	Team           TeamRepository
	Match          MatchRepository
	SpiritScore    SpiritScoreRepository
	Session        CoachingSessionRepository
	Attendance     AttendanceRepository
	HomeVisit      HomeVisitRepository
	Assessment     AssessmentRepository
	ProgressReport ProgressReportRepository
	Notification   NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		User:           NewUserRepo(db),
		StudentProfile: NewStudentProfileRepo(db),
		Tournament:     NewTournamentRepo(db),
		Team:           NewTeamRepo(db),
		Match:          NewMatchRepo(db),
		SpiritScore:    NewSpiritScoreRepo(db),
		Session:        NewCoachingSessionRepo(db),
		Attendance:     NewAttendanceRepo(db),
		HomeVisit:      NewHomeVisitRepo(db),
		Assessment:     NewAssessmentRepo(db),
		ProgressReport: NewProgressReportRepo(db),
		Notification:   NewNotificationRepo(db),
	}
}

// BeginTx 开启事务；未持有数据库连接时（单元测试中的 mock 聚合）返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误或 panic 时回滚
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	if tx == nil {
		return fn(r)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(r.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
