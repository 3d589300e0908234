package dto

// ── 指标与仪表盘 DTO ──

// StudentMetrics 学员指标
type StudentMetrics struct {
	StudentID             string `json:"student_id"`
	AttendanceRate        int    `json:"attendance_rate"`
	HomeVisitsCount       int    `json:"home_visits_count"`
	LatestAssessmentScore *int   `json:"latest_assessment_score"`
	ReportsCount          int    `json:"reports_count"`
}

// AdminDashboard 管理员仪表盘
type AdminDashboard struct {
	TotalTournaments  int64 `json:"total_tournaments"`
	ActiveTournaments int64 `json:"active_tournaments"`
	TotalStudents     int64 `json:"total_students"`
	TotalCoaches      int64 `json:"total_coaches"`
}

// CoachDashboard 教练仪表盘
type CoachDashboard struct {
	TotalSessions    int               `json:"total_sessions"`
	UpcomingSessions []SessionResponse `json:"upcoming_sessions"`
	TotalStudents    int               `json:"total_students"` // 出现在该教练课程出勤记录中的不同学员数
}

// DashboardResponse 按角色返回其中一项
type DashboardResponse struct {
	Role    string          `json:"role"`
	Admin   *AdminDashboard `json:"admin,omitempty"`
	Coach   *CoachDashboard `json:"coach,omitempty"`
	Student *StudentMetrics `json:"student,omitempty"`
}

// ── 通知 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	RelatedID *string `json:"related_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// UnreadCountResponse 未读数响应
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
