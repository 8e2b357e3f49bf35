package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

// ContextUserIDKey carries the acting web user id for the audit columns.
const ContextUserIDKey contextKey = "user_id"

// BaseModel is embedded by every table.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy uint      `gorm:"default:0" json:"-"`
	UpdatedBy uint      `gorm:"default:0" json:"-"`
}

// WithUserID returns ctx tagged with the acting user.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// UserIDFromContext returns 0 when no user is attached.
func UserIDFromContext(ctx context.Context) uint {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(ContextUserIDKey).(uint); ok {
		return id
	}
	return 0
}

// ResetBase zeroes the embedded base fields so the database assigns them.
func (b *BaseModel) ResetBase() {
	*b = BaseModel{}
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID := UserIDFromContext(tx.Statement.Context); userID != 0 {
		b.CreatedBy = userID
		b.UpdatedBy = userID
	}
	return nil
}

func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID := UserIDFromContext(tx.Statement.Context); userID != 0 {
		b.UpdatedBy = userID
	}
	return nil
}
