package model

// User 用户表，对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	FullName     string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null"                      json:"role"` // admin | coach | student，创建后不可修改
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
