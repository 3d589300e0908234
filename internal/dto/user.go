package dto

import "time"

// ── 学员档案 DTO ──

// StudentListRequest 学员列表查询参数
type StudentListRequest struct {
	PaginationRequest
	CoachID string `form:"coach_id" binding:"omitempty,uuid"`
}

// UpdateStudentProfileRequest 更新学员档案（学员本人或管理员）
type UpdateStudentProfileRequest struct {
	DateOfBirth   *time.Time `json:"date_of_birth"`
	School        *string    `json:"school"         binding:"omitempty,max=200"`
	GuardianName  *string    `json:"guardian_name"  binding:"omitempty,max=100"`
	GuardianPhone *string    `json:"guardian_phone" binding:"omitempty,max=30"`
}

// AssignCoachRequest 指派负责教练；coach_id 为空表示解除
type AssignCoachRequest struct {
	CoachID *string `json:"coach_id" binding:"omitempty,uuid"`
}

// StudentProfileResponse 学员档案响应
type StudentProfileResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	FullName      string  `json:"full_name,omitempty"`
	Email         string  `json:"email,omitempty"`
	CoachID       *string `json:"coach_id,omitempty"`
	DateOfBirth   string  `json:"date_of_birth,omitempty"`
	School        string  `json:"school,omitempty"`
	GuardianName  string  `json:"guardian_name,omitempty"`
	GuardianPhone string  `json:"guardian_phone,omitempty"`
}
