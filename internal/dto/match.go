package dto

import "time"

// ── 比赛模块 DTO ──

// CreateMatchRequest 创建比赛
type CreateMatchRequest struct {
	Team1ID       string    `json:"team1_id"       binding:"required,uuid"`
	Team2ID       string    `json:"team2_id"       binding:"required,uuid"`
	MatchDatetime time.Time `json:"match_datetime" binding:"required"`
	Field         string    `json:"field"          binding:"omitempty,max=100"`
}

// RecordScoreRequest 记录比分；指针区分缺省与 0
type RecordScoreRequest struct {
	Team1Score *int `json:"team1_score" binding:"required"`
	Team2Score *int `json:"team2_score" binding:"required"`
}

// MatchListRequest 比赛列表查询参数
type MatchListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=scheduled in_progress completed"`
}

// MatchResponse 比赛响应
type MatchResponse struct {
	ID            string `json:"id"`
	TournamentID  string `json:"tournament_id"`
	Team1ID       string `json:"team1_id"`
	Team1Name     string `json:"team1_name,omitempty"`
	Team2ID       string `json:"team2_id"`
	Team2Name     string `json:"team2_name,omitempty"`
	MatchDatetime string `json:"match_datetime"`
	Field         string `json:"field,omitempty"`
	Status        string `json:"status"`
	Team1Score    *int   `json:"team1_score"`
	Team2Score    *int   `json:"team2_score"`
}

// ── 精神分 DTO ──

// SubmitSpiritScoreRequest 提交精神分；各维度取值范围由引擎配置决定
type SubmitSpiritScoreRequest struct {
	SubmittedByTeamID string `json:"submitted_by_team_id" binding:"required,uuid"`
	RulesKnowledge    *int   `json:"rules_knowledge"      binding:"required"`
	Fouls             *int   `json:"fouls"                binding:"required"`
	BodyContact       *int   `json:"body_contact"         binding:"required"`
	Fairness          *int   `json:"fairness"             binding:"required"`
	Attitude          *int   `json:"attitude"             binding:"required"`
	Communication     *int   `json:"communication"        binding:"required"`
	Comments          string `json:"comments"             binding:"omitempty,max=2000"`
}

// SpiritScoreResponse 精神分响应
type SpiritScoreResponse struct {
	ID                string  `json:"id"`
	MatchID           string  `json:"match_id"`
	SubmittedByTeamID string  `json:"submitted_by_team_id"`
	OpponentTeamID    string  `json:"opponent_team_id"`
	RulesKnowledge    int     `json:"rules_knowledge"`
	Fouls             int     `json:"fouls"`
	BodyContact       int     `json:"body_contact"`
	Fairness          int     `json:"fairness"`
	Attitude          int     `json:"attitude"`
	Communication     int     `json:"communication"`
	Average           float64 `json:"average"`
	Comments          string  `json:"comments,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// LeaderboardEntry 精神分排行榜条目
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	TeamID       string  `json:"team_id"`
	TeamName     string  `json:"team_name"`
	AverageScore float64 `json:"average_score"`
	Submissions  int     `json:"submissions"`
}
