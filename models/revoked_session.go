package models

import "time"

// RevokedSession marks a session token id as logged out until it would have expired anyway.
type RevokedSession struct {
	JTI       string    `gorm:"primaryKey;type:varchar(64)"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (RevokedSession) TableName() string { return "revoked_sessions" }
