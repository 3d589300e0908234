package dto

import "time"

// ── 训练课程 DTO ──

// CreateSessionRequest 创建训练课程
type CreateSessionRequest struct {
	Title           string    `json:"title"            binding:"required,max=200"`
	Description     string    `json:"description"`
	Location        string    `json:"location"         binding:"omitempty,max=200"`
	ScheduledDate   time.Time `json:"scheduled_date"   binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required"`
	MaxAttendees    *int      `json:"max_attendees"`
}

// SessionListRequest 课程列表查询参数
type SessionListRequest struct {
	CoachID string `form:"coach_id" binding:"omitempty,uuid"`
	Status  string `form:"status"   binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
}

// SessionResponse 训练课程响应
type SessionResponse struct {
	ID              string `json:"id"`
	CoachID         string `json:"coach_id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Location        string `json:"location,omitempty"`
	ScheduledDate   string `json:"scheduled_date"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxAttendees    *int   `json:"max_attendees,omitempty"`
	Status          string `json:"status"`
}

// RecordAttendanceRequest 记录出勤
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Attended  *bool  `json:"attended"   binding:"required"`
	Notes     string `json:"notes"      binding:"omitempty,max=2000"`
}

// AttendanceResponse 出勤记录响应
type AttendanceResponse struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	StudentID  string `json:"student_id"`
	Attended   bool   `json:"attended"`
	Notes      string `json:"notes,omitempty"`
	RecordedBy string `json:"recorded_by"`
	CreatedAt  string `json:"created_at"`
}

// ── 家访 / 评估 / 报告 DTO ──

// RecordListRequest 家访、报告列表查询参数
type RecordListRequest struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	CoachID   string `form:"coach_id"   binding:"omitempty,uuid"`
}

// CreateHomeVisitRequest 记录家访
type CreateHomeVisitRequest struct {
	StudentID       string    `json:"student_id"       binding:"required,uuid"`
	VisitDate       time.Time `json:"visit_date"       binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
	Notes           string    `json:"notes"`
}

// HomeVisitResponse 家访响应
type HomeVisitResponse struct {
	ID              string `json:"id"`
	CoachID         string `json:"coach_id"`
	StudentID       string `json:"student_id"`
	VisitDate       string `json:"visit_date"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes,omitempty"`
}

// CreateAssessmentRequest 创建 LSAS 评估
type CreateAssessmentRequest struct {
	StudentID      string    `json:"student_id"      binding:"required,uuid"`
	AssessmentDate time.Time `json:"assessment_date" binding:"required"`
	Score          *int      `json:"score"           binding:"required"`
	Notes          string    `json:"notes"`
}

// AssessmentResponse 评估响应
type AssessmentResponse struct {
	ID             string `json:"id"`
	StudentID      string `json:"student_id"`
	CoachID        string `json:"coach_id"`
	AssessmentDate string `json:"assessment_date"`
	Score          int    `json:"score"`
	Notes          string `json:"notes,omitempty"`
}

// GenerateReportRequest 生成进度报告；指标由系统按生成时刻计算
type GenerateReportRequest struct {
	StudentID       string `json:"student_id"      binding:"required,uuid"`
	Summary         string `json:"summary"`
	Recommendations string `json:"recommendations"`
}

// ProgressReportResponse 进度报告响应
type ProgressReportResponse struct {
	ID                    string `json:"id"`
	StudentID             string `json:"student_id"`
	CoachID               string `json:"coach_id"`
	ReportDate            string `json:"report_date"`
	AttendanceRate        int    `json:"attendance_rate"`
	HomeVisitsCount       int    `json:"home_visits_count"`
	LatestAssessmentScore *int   `json:"latest_assessment_score"`
	Summary               string `json:"summary,omitempty"`
	Recommendations       string `json:"recommendations,omitempty"`
}
