package services

import (
	"context"
	"strings"

	"idcard.link/models"
	"idcard.link/pkg/search"
	"idcard.link/repositories"
)

// ICandidateService lookups in the candidate registry used to pre-fill new cards.
type ICandidateService interface {
	Search(ctx context.Context, term string) ([]models.CandidateRecord, error)
}

type CandidateService struct {
	repo repositories.ICandidateRepository
}

func NewCandidateService(repo repositories.ICandidateRepository) *CandidateService {
	return &CandidateService{repo: repo}
}

// Search returns an empty list for a blank term.
func (s *CandidateService) Search(ctx context.Context, term string) ([]models.CandidateRecord, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.CandidateRecord{}, nil
	}
	return s.repo.SearchByName(ctx, term, search.DefaultLimit)
}

var _ ICandidateService = (*CandidateService)(nil)
