package models

import "time"

// User is a web operator account (legacy table tblusers).
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(150)" json:"full_name"`
	Designation  string     `gorm:"type:varchar(100)" json:"designation"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "users" }
