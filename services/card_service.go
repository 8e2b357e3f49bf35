package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"idcard.link/configs/configslog"
	"idcard.link/models"
	"idcard.link/pkg/search"
	"idcard.link/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CardServiceError card service failures.
type CardServiceError string

func (e CardServiceError) Error() string { return string(e) }

const (
	ErrCardNotFound        CardServiceError = "card not found"
	ErrCardInvalidInput    CardServiceError = "invalid card data"
	ErrCardDuplicate       CardServiceError = "card number already exists"
	ErrCardNoEditForbidden CardServiceError = "card number cannot be changed"
	ErrCardInvalidStatus   CardServiceError = "status must be ID or PRINTED"
	ErrCardCreationFailed  CardServiceError = "card could not be created"
	ErrCardUpdateFailed    CardServiceError = "card could not be updated"
	ErrCardDeletionFailed  CardServiceError = "card could not be deleted"
)

const (
	stepInsertRecord = "insert_record"
	stepUpdateRecord = "update_record"
	stepDeleteRecord = "delete_record"
	stepSetStatus    = "set_status"
)

// ICardService operations on one card variant.
type ICardService[T any] interface {
	Variant() models.Variant
	Search(ctx context.Context, query string) ([]T, error)
	Get(ctx context.Context, cardNo string) (*T, error)
	Peek(ctx context.Context) (string, error)
	Exists(ctx context.Context, suffix string) (bool, error)
	Create(ctx context.Context, card *T, customSuffix string) (*T, error)
	Update(ctx context.Context, card *T) (*T, *OperationReport, error)
	Delete(ctx context.Context, cardNo string, id uint) (*OperationReport, error)
	SetStatus(ctx context.Context, cardNo string, status models.CardStatus) error
	History(ctx context.Context, cardNo string) ([]models.CardAudit, error)
}

// CardServiceOptions switches that change the edit workflow.
type CardServiceOptions struct {
	AllowCardNoEdit bool
}

// CardService implements ICardService for SeniorCard or YouthCard.
type CardService[T any, P models.CardPtr[T]] struct {
	db        *gorm.DB
	variant   models.Variant
	repo      repositories.ICardRepository[T]
	allocator *IdentifierAllocator
	assets    IAssetStore
	audit     IAuditService
	opts      CardServiceOptions
}

func NewCardService[T any, P models.CardPtr[T]](
	db *gorm.DB,
	variant models.Variant,
	repo repositories.ICardRepository[T],
	allocator *IdentifierAllocator,
	assets IAssetStore,
	audit IAuditService,
	opts CardServiceOptions,
) *CardService[T, P] {
	return &CardService[T, P]{
		db:        db,
		variant:   variant,
		repo:      repo,
		allocator: allocator,
		assets:    assets,
		audit:     audit,
		opts:      opts,
	}
}

func (s *CardService[T, P]) Variant() models.Variant { return s.variant }

func (s *CardService[T, P]) Search(ctx context.Context, query string) ([]T, error) {
	return s.repo.Search(ctx, search.SplitTerms(query), search.DefaultLimit)
}

func (s *CardService[T, P]) Get(ctx context.Context, cardNo string) (*T, error) {
	card, err := s.repo.FindByCardNo(ctx, strings.TrimSpace(cardNo))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// Peek previews the next card number without reserving it.
func (s *CardService[T, P]) Peek(ctx context.Context) (string, error) {
	return s.allocator.Peek(ctx, s.variant.Prefix, s.repo)
}

// NormalizeSuffix keeps the digits of raw and pads them to six places.
func NormalizeSuffix(raw string) (string, error) {
	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	digits := b.String()
	if digits == "" || len(digits) > repositories.SuffixDigits {
		return "", fmt.Errorf("%w: number must have 1 to %d digits", ErrCardInvalidInput, repositories.SuffixDigits)
	}
	return strings.Repeat("0", repositories.SuffixDigits-len(digits)) + digits, nil
}

// Exists tells whether the variant already issued the given number.
func (s *CardService[T, P]) Exists(ctx context.Context, suffix string) (bool, error) {
	padded, err := NormalizeSuffix(suffix)
	if err != nil {
		return false, err
	}
	return s.repo.CardNoExists(ctx, s.variant.Prefix+padded, 0)
}

func validateInfo(info *models.CardInfo) error {
	info.FullName = strings.TrimSpace(info.FullName)
	if info.FullName == "" {
		return fmt.Errorf("%w: full name is required", ErrCardInvalidInput)
	}
	if info.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", info.BirthDate); err != nil {
			return fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrCardInvalidInput)
		}
	}
	return nil
}

// Create stores a new card. Id and timestamps from the caller are discarded.
// Without customSuffix the next number is allocated; with it that exact
// number is claimed or ErrCardDuplicate returned.
func (s *CardService[T, P]) Create(ctx context.Context, card *T, customSuffix string) (*T, error) {
	p := P(card)
	info := p.Info()
	if err := validateInfo(info); err != nil {
		return nil, err
	}
	p.ResetBase()
	info.Status = models.CardStatusID
	info.IssuedAt = time.Now().UTC()
	p.SetCardNo("")

	claim := func(txCtx context.Context, cardNo string) error {
		taken, err := s.repo.CardNoExists(txCtx, cardNo, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrCardDuplicate, cardNo)
		}
		p.SetCardNo(cardNo)
		if err := s.repo.Create(txCtx, card); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: %s", ErrCardDuplicate, cardNo)
			}
			return err
		}
		return nil
	}

	var (
		cardNo string
		err    error
	)
	if strings.TrimSpace(customSuffix) != "" {
		padded, perr := NormalizeSuffix(customSuffix)
		if perr != nil {
			return nil, perr
		}
		n, _ := strconv.Atoi(padded)
		if n == 0 {
			return nil, fmt.Errorf("%w: card number must be greater than zero", ErrCardInvalidInput)
		}
		cardNo, err = s.allocator.Reserve(ctx, s.variant.Prefix, n, claim)
	} else {
		cardNo, err = s.allocator.Allocate(ctx, s.variant.Prefix, s.repo, claim)
	}
	if err != nil {
		p.SetCardNo("")
		if errors.Is(err, ErrCardDuplicate) || IsAllocationError(err) {
			return nil, err
		}
		configslog.Log.Error("CardService.Create failed", zap.String("variant", s.variant.Key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCardCreationFailed, err)
	}

	report := &OperationReport{}
	report.Add(StepResult{Step: stepInsertRecord, Target: cardNo, Status: StepOK})
	s.audit.Record(ctx, s.variant.Key, models.AuditActionCreate, cardNo, true, report)
	return card, nil
}

func (s *CardService[T, P]) lockCurrent(ctx context.Context, id uint, cardNo string) (*T, error) {
	var (
		current *T
		err     error
	)
	switch {
	case id != 0:
		current, err = s.repo.LockByID(ctx, id)
	case cardNo != "":
		current, err = s.repo.LockByCardNo(ctx, cardNo)
	default:
		return nil, fmt.Errorf("%w: id or card number is required", ErrCardInvalidInput)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCardNotFound
	}
	return current, err
}

// Update replaces the editable fields of the card found by id, or by card
// number when id is zero. A changed card number is checked against the edit
// switch, the printed state and existing numbers, and after commit the
// card's files are renamed. Rename failures become report warnings.
func (s *CardService[T, P]) Update(ctx context.Context, card *T) (*T, *OperationReport, error) {
	in := P(card)
	info := in.Info()
	if err := validateInfo(info); err != nil {
		return nil, nil, err
	}
	if info.Status != "" && !info.Status.Valid() {
		return nil, nil, ErrCardInvalidStatus
	}
	newNo := strings.TrimSpace(in.CardNo())

	var (
		oldNo   string
		updated *T
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		current, err := s.lockCurrent(txCtx, in.GetID(), newNo)
		if err != nil {
			return err
		}
		cur := P(current)
		oldNo = cur.CardNo()
		if newNo == "" {
			newNo = oldNo
		}
		if info.Status == "" {
			info.Status = cur.Info().Status
		}

		if newNo != oldNo {
			if !s.opts.AllowCardNoEdit {
				return fmt.Errorf("%w: editing is disabled", ErrCardNoEditForbidden)
			}
			if cur.Info().Status == models.CardStatusPrinted {
				return fmt.Errorf("%w: card %s is already printed", ErrCardNoEditForbidden, oldNo)
			}
			if _, ok := repositories.ParseSuffix(s.variant.Prefix, newNo); !ok {
				return fmt.Errorf("%w: card number must look like %s", ErrCardInvalidInput, FormatCardNo(s.variant.Prefix, 1))
			}
			taken, err := s.repo.CardNoExists(txCtx, newNo, cur.GetID())
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", ErrCardDuplicate, newNo)
			}
		}
		in.SetCardNo(newNo)

		if err := s.repo.UpdateColumns(txCtx, cur.GetID(), in.UpdateColumns()); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("%w: %s", ErrCardDuplicate, newNo)
			}
			return err
		}
		updated, err = s.repo.FindByID(txCtx, cur.GetID())
		return err
	})
	if err != nil {
		var svcErr CardServiceError
		if errors.As(err, &svcErr) {
			return nil, nil, err
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrCardNotFound
		}
		configslog.Log.Error("CardService.Update failed", zap.String("variant", s.variant.Key), zap.String("card_no", oldNo), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrCardUpdateFailed, err)
	}

	report := &OperationReport{}
	report.Add(StepResult{Step: stepUpdateRecord, Target: newNo, Status: StepOK})
	if newNo != oldNo {
		report.AddAll(s.assets.Rename(ctx, oldNo, newNo))
		for _, w := range report.Warnings {
			configslog.Log.Warn("Card renamed with asset warnings", zap.String("from", oldNo), zap.String("to", newNo), zap.String("warning", w))
		}
	}
	s.audit.Record(ctx, s.variant.Key, models.AuditActionUpdate, newNo, report.OK(), report)
	return updated, report, nil
}

// Delete removes the card found by id, or by card number when id is zero,
// then removes its files. Missing files are reported as absent.
func (s *CardService[T, P]) Delete(ctx context.Context, cardNo string, id uint) (*OperationReport, error) {
	cardNo = strings.TrimSpace(cardNo)
	var deletedNo string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.WithTx(ctx, tx)
		current, err := s.lockCurrent(txCtx, id, cardNo)
		if err != nil {
			return err
		}
		cur := P(current)
		deletedNo = cur.CardNo()
		return s.repo.DeleteByID(txCtx, cur.GetID())
	})
	if err != nil {
		var svcErr CardServiceError
		if errors.As(err, &svcErr) {
			return nil, err
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		configslog.Log.Error("CardService.Delete failed", zap.String("variant", s.variant.Key), zap.String("card_no", cardNo), zap.Uint("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCardDeletionFailed, err)
	}

	report := &OperationReport{}
	report.Add(StepResult{Step: stepDeleteRecord, Target: deletedNo, Status: StepOK})
	report.AddAll(s.assets.Delete(ctx, deletedNo))
	s.audit.Record(ctx, s.variant.Key, models.AuditActionDelete, deletedNo, report.OK(), report)
	return report, nil
}

func (s *CardService[T, P]) SetStatus(ctx context.Context, cardNo string, status models.CardStatus) error {
	status = models.CardStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return ErrCardInvalidStatus
	}
	cardNo = strings.TrimSpace(cardNo)
	if cardNo == "" {
		return fmt.Errorf("%w: card number is required", ErrCardInvalidInput)
	}
	if err := s.repo.SetStatus(ctx, cardNo, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCardNotFound
		}
		configslog.Log.Error("CardService.SetStatus failed", zap.String("card_no", cardNo), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCardUpdateFailed, err)
	}
	report := &OperationReport{}
	report.Add(StepResult{Step: stepSetStatus, Target: cardNo + " -> " + string(status), Status: StepOK})
	s.audit.Record(ctx, s.variant.Key, models.AuditActionStatus, cardNo, true, report)
	return nil
}

func (s *CardService[T, P]) History(ctx context.Context, cardNo string) ([]models.CardAudit, error) {
	return s.audit.History(ctx, s.variant.Key, strings.TrimSpace(cardNo))
}

var (
	_ ICardService[models.SeniorCard] = (*CardService[models.SeniorCard, *models.SeniorCard])(nil)
	_ ICardService[models.YouthCard]  = (*CardService[models.YouthCard, *models.YouthCard])(nil)
)
