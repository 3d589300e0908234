package dto

import "time"

// ── 赛事模块 DTO ──

// CreateTournamentRequest 创建赛事请求
type CreateTournamentRequest struct {
	Title       string    `json:"title"       binding:"required,max=200"`
	Description string    `json:"description"`
	Rules       string    `json:"rules"`
	Location    string    `json:"location"    binding:"required,max=200"`
	BannerURL   string    `json:"banner_url"  binding:"omitempty,url,max=500"`
	StartDate   time.Time `json:"start_date"  binding:"required"`
	EndDate     time.Time `json:"end_date"    binding:"required"`
}

// UpdateTournamentRequest 更新赛事描述信息（不含状态）
type UpdateTournamentRequest struct {
	Title       *string    `json:"title"       binding:"omitempty,max=200"`
	Description *string    `json:"description"`
	Rules       *string    `json:"rules"`
	Location    *string    `json:"location"    binding:"omitempty,max=200"`
	BannerURL   *string    `json:"banner_url"  binding:"omitempty,max=500"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// AdvanceTournamentRequest 推进赛事状态
type AdvanceTournamentRequest struct {
	Status string `json:"status" binding:"required,oneof=draft registration_open in_progress completed"`
}

// TournamentListRequest 赛事列表查询参数
type TournamentListRequest struct {
	PaginationRequest
	Status    string `form:"status"     binding:"omitempty,oneof=draft registration_open in_progress completed"`
	CreatedBy string `form:"created_by" binding:"omitempty,uuid"`
}

// TournamentResponse 赛事响应
type TournamentResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rules       string `json:"rules,omitempty"`
	Location    string `json:"location"`
	BannerURL   string `json:"banner_url,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ── 球队报名 DTO ──

// PlayerInput 球员信息
type PlayerInput struct {
	Name         string  `json:"name"          binding:"required,max=100"`
	UserID       *string `json:"user_id"       binding:"omitempty,uuid"`
	JerseyNumber *int    `json:"jersey_number" binding:"omitempty,min=0,max=999"`
	Gender       string  `json:"gender"        binding:"omitempty,max=20"`
}

// RegisterTeamRequest 报名球队
type RegisterTeamRequest struct {
	Name    string        `json:"name"    binding:"required,max=100"`
	Players []PlayerInput `json:"players" binding:"omitempty,dive"`
}

// AddPlayersRequest 追加球员
type AddPlayersRequest struct {
	Players []PlayerInput `json:"players" binding:"required,min=1,dive"`
}

// TeamDecisionRequest 审批/拒绝/候补请求
// ExpectedStatus 为调用方看到的报名状态，与当前状态不一致时返回冲突
type TeamDecisionRequest struct {
	ExpectedStatus string `json:"expected_status" binding:"omitempty,oneof=pending approved rejected waitlisted"`
}

// PlayerResponse 球员响应
type PlayerResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UserID       *string `json:"user_id,omitempty"`
	JerseyNumber *int    `json:"jersey_number,omitempty"`
	Gender       string  `json:"gender,omitempty"`
}

// TeamResponse 球队响应
type TeamResponse struct {
	ID                 string           `json:"id"`
	TournamentID       string           `json:"tournament_id"`
	Name               string           `json:"name"`
	CaptainID          string           `json:"captain_id"`
	RegistrationStatus string           `json:"registration_status"`
	ApprovedBy         *string          `json:"approved_by,omitempty"`
	Players            []PlayerResponse `json:"players"`
	CreatedAt          string           `json:"created_at"`
}

// TeamListResponse 按展示需要分组的球队列表
type TeamListResponse struct {
	Approved []TeamResponse `json:"approved"`
	Pending  []TeamResponse `json:"pending"`
	Rejected []TeamResponse `json:"rejected"`
}
