package model

import "time"

// StudentProfile 学员档案表，对应 student_profiles（与 student 角色用户 1:1）
type StudentProfile struct {
	StudentID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	CoachID       *string    `gorm:"type:uuid;index"                                json:"coach_id,omitempty"` // 负责教练
	DateOfBirth   *time.Time `gorm:"type:date"                                      json:"date_of_birth,omitempty"`
	School        string     `gorm:"type:varchar(200)"                              json:"school,omitempty"`
	GuardianName  string     `gorm:"type:varchar(100)"                              json:"guardian_name,omitempty"`
	GuardianPhone string     `gorm:"type:varchar(30)"                               json:"guardian_phone,omitempty"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }

// OwnedBy 学员是否由该教练负责
func (p *StudentProfile) OwnedBy(coachID string) bool {
	return p.CoachID != nil && *p.CoachID == coachID
}
