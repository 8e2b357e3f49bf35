package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionStatus = "status"
)

// CardAudit stores the step report of a card mutation.
type CardAudit struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Variant   string         `gorm:"type:varchar(16);not null;index:idx_card_audits_lookup" json:"variant"`
	CardNo    string         `gorm:"type:varchar(32);not null;index:idx_card_audits_lookup" json:"card_no"`
	Action    string         `gorm:"type:varchar(16);not null" json:"action"`
	ActorID   uint           `gorm:"index" json:"actor_id"`
	Success   bool           `json:"success"`
	Steps     datatypes.JSON `json:"steps"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (CardAudit) TableName() string { return "card_audits" }
