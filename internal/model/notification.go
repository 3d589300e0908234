package model

// Notification 通知消息表，对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"` // team_registration | session_cancelled
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string  `gorm:"type:text;not null"                             json:"message"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	AppendOnlyModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
