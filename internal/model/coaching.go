package model

import "time"

// CoachingSession 训练课程表，对应 coaching_sessions
type CoachingSession struct {
	SessionID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	CoachID         string    `gorm:"type:uuid;not null;index"                       json:"coach_id"`
	Title           string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description     string    `gorm:"type:text"                                      json:"description,omitempty"`
	Location        string    `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	ScheduledDate   time.Time `gorm:"not null"                                       json:"scheduled_date"`
	DurationMinutes int       `gorm:"not null"                                       json:"duration_minutes"`
	MaxAttendees    *int      `json:"max_attendees,omitempty"` // 为空表示不限
	Status          string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"` // scheduled | in_progress | completed | cancelled
	BaseModel
}

// TableName 指定表名
func (CoachingSession) TableName() string { return "coaching_sessions" }

// SessionAttendance 出勤记录表，对应 session_attendance，(session_id, student_id) 唯一
type SessionAttendance struct {
	AttendanceID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"attendance_id"`
	SessionID    string `gorm:"type:uuid;not null;uniqueIndex:uk_attendance"        json:"session_id"`
	StudentID    string `gorm:"type:uuid;not null;uniqueIndex:uk_attendance;index"  json:"student_id"`
	Attended     bool   `gorm:"not null"                                            json:"attended"`
	Notes        string `gorm:"type:text"                                           json:"notes,omitempty"`
	RecordedBy   string `gorm:"type:uuid;not null"                                  json:"recorded_by"`
	AppendOnlyModel
}

// TableName 指定表名
func (SessionAttendance) TableName() string { return "session_attendance" }

// HomeVisit 家访记录表，对应 home_visits
type HomeVisit struct {
	HomeVisitID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"home_visit_id"`
	CoachID         string    `gorm:"type:uuid;not null;index"                       json:"coach_id"`
	StudentID       string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	VisitDate       time.Time `gorm:"not null"                                       json:"visit_date"`
	DurationMinutes int       `gorm:"not null"                                       json:"duration_minutes"`
	Notes           string    `gorm:"type:text"                                      json:"notes,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (HomeVisit) TableName() string { return "home_visits" }

// LSASAssessment LSAS 评估表，对应 lsas_assessments
type LSASAssessment struct {
	AssessmentID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assessment_id"`
	StudentID      string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CoachID        string    `gorm:"type:uuid;not null"                             json:"coach_id"`
	AssessmentDate time.Time `gorm:"not null"                                       json:"assessment_date"`
	Score          int       `gorm:"not null"                                       json:"score"`
	Notes          string    `gorm:"type:text"                                      json:"notes,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (LSASAssessment) TableName() string { return "lsas_assessments" }

// ProgressReport 进度报告表，对应 progress_reports，生成后不可修改
type ProgressReport struct {
	ReportID              string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	StudentID             string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CoachID               string    `gorm:"type:uuid;not null;index"                       json:"coach_id"`
	ReportDate            time.Time `gorm:"not null"                                       json:"report_date"`
	AttendanceRate        int       `gorm:"not null"                                       json:"attendance_rate"`
	HomeVisitsCount       int       `gorm:"not null"                                       json:"home_visits_count"`
	LatestAssessmentScore *int      `json:"latest_assessment_score,omitempty"`
	Summary               string    `gorm:"type:text"                                      json:"summary,omitempty"`
	Recommendations       string    `gorm:"type:text"                                      json:"recommendations,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (ProgressReport) TableName() string { return "progress_reports" }
