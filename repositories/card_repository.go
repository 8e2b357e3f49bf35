package repositories

import (
	"context"
	"strconv"
	"strings"

	"idcard.link/configs/configslog"
	"idcard.link/models"
	"idcard.link/pkg/search"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SuffixDigits is the fixed width of the numeric part of a card number.
const SuffixDigits = 6

var searchColumns = []string{"card_no", "full_name", "status"}

// ICardRepository card table access for one variant.
type ICardRepository[T any] interface {
	Search(ctx context.Context, terms []string, limit int) ([]T, error)
	FindByID(ctx context.Context, id uint) (*T, error)
	FindByCardNo(ctx context.Context, cardNo string) (*T, error)
	// LockByID / LockByCardNo read the row with FOR UPDATE; meant to run inside a transaction.
	LockByID(ctx context.Context, id uint) (*T, error)
	LockByCardNo(ctx context.Context, cardNo string) (*T, error)
	CardNoExists(ctx context.Context, cardNo string, excludeID uint) (bool, error)
	MaxSuffix(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, card *T) error
	UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error
	SetStatus(ctx context.Context, cardNo string, status models.CardStatus) error
	DeleteByID(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// CardRepository works on SeniorCard or YouthCard depending on T.
type CardRepository[T any, P models.CardPtr[T]] struct {
	db *gorm.DB
}

func NewCardRepository[T any, P models.CardPtr[T]](db *gorm.DB) *CardRepository[T, P] {
	return &CardRepository[T, P]{db: db}
}

func (r *CardRepository[T, P]) model() *T {
	return new(T)
}

// Search returns at most limit rows; every term must match card_no, full_name or status.
func (r *CardRepository[T, P]) Search(ctx context.Context, terms []string, limit int) ([]T, error) {
	if limit <= 0 || limit > search.DefaultLimit {
		limit = search.DefaultLimit
	}
	var results []T
	err := dbFrom(ctx, r.db).
		Model(r.model()).
		Scopes(search.Terms(searchColumns, terms, "id DESC")).
		Limit(limit).
		Find(&results).Error
	if err != nil {
		configslog.Log.Error("CardRepository.Search: DB error", zap.Strings("terms", terms), zap.Error(err))
		return nil, err
	}
	return results, nil
}

func (r *CardRepository[T, P]) FindByID(ctx context.Context, id uint) (*T, error) {
	var card T
	if err := dbFrom(ctx, r.db).First(&card, id).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *CardRepository[T, P]) FindByCardNo(ctx context.Context, cardNo string) (*T, error) {
	var card T
	if err := dbFrom(ctx, r.db).Where("card_no = ?", cardNo).First(&card).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *CardRepository[T, P]) LockByID(ctx context.Context, id uint) (*T, error) {
	var card T
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *CardRepository[T, P]) LockByCardNo(ctx context.Context, cardNo string) (*T, error) {
	var card T
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Where("card_no = ?", cardNo).First(&card).Error
	if err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *CardRepository[T, P]) CardNoExists(ctx context.Context, cardNo string, excludeID uint) (bool, error) {
	var count int64
	q := dbFrom(ctx, r.db).Model(r.model()).Where("card_no = ?", cardNo)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MaxSuffix returns the highest numeric suffix among card numbers shaped
// prefix + six digits, or 0 when there are none. Zero padding makes the
// lexical order of those card numbers equal to their numeric order, so the
// scan walks downward and stops at the first all-digit suffix.
func (r *CardRepository[T, P]) MaxSuffix(ctx context.Context, prefix string) (int, error) {
	pattern := search.EscapeLike(prefix) + strings.Repeat("_", SuffixDigits)
	const batch = 100
	for offset := 0; ; offset += batch {
		var cardNos []string
		err := dbFrom(ctx, r.db).
			Model(r.model()).
			Where("card_no LIKE ? ESCAPE '!'", pattern).
			Order("card_no DESC").
			Limit(batch).
			Offset(offset).
			Pluck("card_no", &cardNos).Error
		if err != nil {
			return 0, err
		}
		for _, cardNo := range cardNos {
			if n, ok := ParseSuffix(prefix, cardNo); ok {
				return n, nil
			}
		}
		if len(cardNos) < batch {
			return 0, nil
		}
	}
}

// ParseSuffix extracts the fixed-width numeric segment after prefix.
func ParseSuffix(prefix, cardNo string) (int, bool) {
	if !strings.HasPrefix(cardNo, prefix) {
		return 0, false
	}
	digits := cardNo[len(prefix):]
	if len(digits) != SuffixDigits {
		return 0, false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r *CardRepository[T, P]) Create(ctx context.Context, card *T) error {
	return translate(dbFrom(ctx, r.db).Create(card).Error)
}

func (r *CardRepository[T, P]) UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error {
	result := dbFrom(ctx, r.db).Model(r.model()).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.idExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (r *CardRepository[T, P]) idExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(r.model()).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CardRepository[T, P]) SetStatus(ctx context.Context, cardNo string, status models.CardStatus) error {
	result := dbFrom(ctx, r.db).Model(r.model()).Where("card_no = ?", cardNo).Update("status", status)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.CardNoExists(ctx, cardNo, 0)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (r *CardRepository[T, P]) DeleteByID(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(r.model(), id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CardRepository[T, P]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(r.model()).Count(&count).Error
	return count, err
}

var (
	_ ICardRepository[models.SeniorCard] = (*CardRepository[models.SeniorCard, *models.SeniorCard])(nil)
	_ ICardRepository[models.YouthCard]  = (*CardRepository[models.YouthCard, *models.YouthCard])(nil)
)
