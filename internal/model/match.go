package model

import "time"

// Match 比赛表，对应 matches
type Match struct {
	MatchID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"match_id"`
	TournamentID  string    `gorm:"type:uuid;not null;index"                       json:"tournament_id"`
	Team1ID       string    `gorm:"type:uuid;not null"                             json:"team1_id"`
	Team2ID       string    `gorm:"type:uuid;not null"                             json:"team2_id"`
	MatchDatetime time.Time `gorm:"not null"                                       json:"match_datetime"`
	Field         string    `gorm:"type:varchar(100)"                              json:"field,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"` // scheduled | in_progress | completed
	Team1Score    *int      `json:"team1_score"` // completed 前为空
	Team2Score    *int      `json:"team2_score"`
	BaseModel

	// 关联
	Team1 *Team `gorm:"foreignKey:Team1ID;references:TeamID" json:"team1,omitempty"`
	Team2 *Team `gorm:"foreignKey:Team2ID;references:TeamID" json:"team2,omitempty"`
}

// TableName 指定表名
func (Match) TableName() string { return "matches" }

// Involves 球队是否参与该比赛
func (m *Match) Involves(teamID string) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}

// OpponentOf 返回对手球队 ID
func (m *Match) OpponentOf(teamID string) string {
	if m.Team1ID == teamID {
		return m.Team2ID
	}
	return m.Team1ID
}

// SpiritScore 精神分表，对应 spirit_scores，(match_id, submitted_by_team_id) 唯一
type SpiritScore struct {
	SpiritScoreID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"spirit_score_id"`
	MatchID           string `gorm:"type:uuid;not null;uniqueIndex:uk_spirit_match_team"     json:"match_id"`
	SubmittedByTeamID string `gorm:"type:uuid;not null;uniqueIndex:uk_spirit_match_team"     json:"submitted_by_team_id"`
	OpponentTeamID    string `gorm:"type:uuid;not null;index"                                json:"opponent_team_id"` // 被评价的球队
	RulesKnowledge    int    `gorm:"not null"                                                json:"rules_knowledge"`
	Fouls             int    `gorm:"not null"                                                json:"fouls"`
	BodyContact       int    `gorm:"not null"                                                json:"body_contact"`
	Fairness          int    `gorm:"not null"                                                json:"fairness"`
	Attitude          int    `gorm:"not null"                                                json:"attitude"`
	Communication     int    `gorm:"not null"                                                json:"communication"`
	Comments          string `gorm:"type:text"                                               json:"comments,omitempty"`
	SubmittedBy       string `gorm:"type:uuid;not null"                                      json:"submitted_by"`
	AppendOnlyModel
}

// TableName 指定表名
func (SpiritScore) TableName() string { return "spirit_scores" }
