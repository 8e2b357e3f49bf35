package services

import (
	"context"
	"errors"
	"fmt"

	"idcard.link/configs/configslog"
	"idcard.link/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxSuffix is the largest number a six digit suffix can hold.
const MaxSuffix = 999999

// AllocatorError allocation failures.
type AllocatorError string

func (e AllocatorError) Error() string { return string(e) }

const (
	ErrAllocationFailed AllocatorError = "could not allocate card number"
	ErrSuffixExhausted  AllocatorError = "card number range exhausted"
)

// SuffixSource reports the highest suffix already used by a card table.
type SuffixSource interface {
	MaxSuffix(ctx context.Context, prefix string) (int, error)
}

// FormatCardNo composes prefix and zero padded suffix.
func FormatCardNo(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, repositories.SuffixDigits, n)
}

// IdentifierAllocator hands out sequential card numbers: the highest existing
// suffix plus one. The sequence row for a prefix only serves as the lock; it
// is held for the whole transaction, and the caller's claim (the card insert)
// runs inside that transaction, so two allocations can never observe the same
// maximum. A deleted highest number is handed out again.
type IdentifierAllocator struct {
	db      *gorm.DB
	seqRepo repositories.ISequenceRepository
}

func NewIdentifierAllocator(db *gorm.DB, seqRepo repositories.ISequenceRepository) *IdentifierAllocator {
	return &IdentifierAllocator{db: db, seqRepo: seqRepo}
}

// ClaimFunc persists the record that owns cardNo. ctx carries the allocation transaction.
type ClaimFunc func(ctx context.Context, cardNo string) error

// Allocate picks the next free number for prefix and calls claim with it.
func (a *IdentifierAllocator) Allocate(ctx context.Context, prefix string, src SuffixSource, claim ClaimFunc) (string, error) {
	var cardNo string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if err := a.lock(txCtx, prefix); err != nil {
			return err
		}
		highest, err := src.MaxSuffix(txCtx, prefix)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
		}
		next := highest + 1
		if next > MaxSuffix {
			return ErrSuffixExhausted
		}
		cardNo = FormatCardNo(prefix, next)
		return claim(txCtx, cardNo)
	})
	if err != nil {
		configslog.Log.Warn("Card number allocation failed", zap.String("prefix", prefix), zap.Error(err))
		return "", err
	}
	return cardNo, nil
}

// Reserve claims a caller chosen suffix under the same lock as Allocate.
func (a *IdentifierAllocator) Reserve(ctx context.Context, prefix string, n int, claim ClaimFunc) (string, error) {
	if n < 1 || n > MaxSuffix {
		return "", fmt.Errorf("%w: suffix %d out of range", ErrSuffixExhausted, n)
	}
	cardNo := FormatCardNo(prefix, n)
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		if err := a.lock(txCtx, prefix); err != nil {
			return err
		}
		return claim(txCtx, cardNo)
	})
	if err != nil {
		return "", err
	}
	return cardNo, nil
}

func (a *IdentifierAllocator) lock(ctx context.Context, prefix string) error {
	if err := a.seqRepo.Ensure(ctx, prefix); err != nil {
		return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	if _, err := a.seqRepo.Lock(ctx, prefix); err != nil {
		return fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	return nil
}

// Peek returns the number the next Allocate would most likely return.
// Nothing is locked or reserved.
func (a *IdentifierAllocator) Peek(ctx context.Context, prefix string, src SuffixSource) (string, error) {
	highest, err := src.MaxSuffix(ctx, prefix)
	if err != nil {
		return "", err
	}
	if highest+1 > MaxSuffix {
		return "", ErrSuffixExhausted
	}
	return FormatCardNo(prefix, highest+1), nil
}

// IsAllocationError reports whether err came from the allocator itself.
func IsAllocationError(err error) bool {
	return errors.Is(err, ErrAllocationFailed) || errors.Is(err, ErrSuffixExhausted)
}
