package model

// Team 参赛球队表，对应 teams
type Team struct {
	TeamID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"team_id"`
	TournamentID       string  `gorm:"type:uuid;not null;index"                        json:"tournament_id"`
	Name               string  `gorm:"type:varchar(100);not null"                      json:"name"`
	CaptainID          string  `gorm:"type:uuid;not null"                              json:"captain_id"`
	RegistrationStatus string  `gorm:"type:varchar(20);not null;default:'pending'"     json:"registration_status"` // pending | approved | rejected | waitlisted
	ApprovedBy         *string `gorm:"type:uuid"                                       json:"approved_by,omitempty"` // 仅 approved 时有值
	BaseModel

	// 关联
	Players []Player `gorm:"foreignKey:TeamID;references:TeamID" json:"players,omitempty"`
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// ParticipantIDs 队长与已绑定账号的球员
func (t *Team) ParticipantIDs() []string {
	ids := []string{t.CaptainID}
	for _, p := range t.Players {
		if p.UserID != nil && *p.UserID != t.CaptainID {
			ids = append(ids, *p.UserID)
		}
	}
	return ids
}

// Player 球员表，对应 players（每名球员只属于一支球队）
type Player struct {
	PlayerID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"player_id"`
	TeamID       string  `gorm:"type:uuid;not null;index"                       json:"team_id"`
	UserID       *string `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	JerseyNumber *int    `json:"jersey_number,omitempty"`
	Gender       string  `gorm:"type:varchar(20)"                               json:"gender,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (Player) TableName() string { return "players" }
