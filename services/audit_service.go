package services

import (
	"context"
	"encoding/json"

	"idcard.link/configs/configslog"
	"idcard.link/models"
	"idcard.link/repositories"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// IAuditService writes and reads the card audit trail.
type IAuditService interface {
	Record(ctx context.Context, variant, action, cardNo string, success bool, report *OperationReport)
	History(ctx context.Context, variant, cardNo string) ([]models.CardAudit, error)
}

type AuditService struct {
	repo repositories.IAuditRepository
}

func NewAuditService(repo repositories.IAuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record never fails the caller; a write error is only logged.
func (s *AuditService) Record(ctx context.Context, variant, action, cardNo string, success bool, report *OperationReport) {
	steps := []StepResult{}
	if report != nil {
		steps = report.Steps
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		configslog.Log.Error("AuditService.Record: marshal failed", zap.Error(err))
		return
	}
	entry := &models.CardAudit{
		Variant: variant,
		CardNo:  cardNo,
		Action:  action,
		ActorID: models.UserIDFromContext(ctx),
		Success: success,
		Steps:   datatypes.JSON(raw),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		configslog.Log.Error("AuditService.Record: write failed",
			zap.String("variant", variant), zap.String("card_no", cardNo), zap.String("action", action), zap.Error(err))
	}
}

func (s *AuditService) History(ctx context.Context, variant, cardNo string) ([]models.CardAudit, error) {
	return s.repo.ListForCard(ctx, variant, cardNo, 100)
}

var _ IAuditService = (*AuditService)(nil)
