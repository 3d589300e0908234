package model

import "time"

// Tournament 赛事表，对应 tournaments
type Tournament struct {
	TournamentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tournament_id"`
	Title        string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string    `gorm:"type:text"                                      json:"description,omitempty"`
	Rules        string    `gorm:"type:text"                                      json:"rules,omitempty"`
	Location     string    `gorm:"type:varchar(200);not null"                     json:"location"`
	BannerURL    string    `gorm:"type:varchar(500)"                              json:"banner_url,omitempty"`
	StartDate    time.Time `gorm:"not null"                                       json:"start_date"`
	EndDate      time.Time `gorm:"not null"                                       json:"end_date"`
	Status       string    `gorm:"type:varchar(30);not null;default:'draft'"      json:"status"` // draft | registration_open | in_progress | completed
	SoftDeleteModel
}

// TableName 指定表名
func (Tournament) TableName() string { return "tournaments" }
