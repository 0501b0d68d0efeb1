package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/smartdocs/internal/core/domain"
	"github.com/kirillkom/smartdocs/internal/core/ports"
)

const defaultRecentLimit = 5

type DashboardUseCase struct {
	repo ports.DocumentRepository
}

func NewDashboardUseCase(repo ports.DocumentRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

func (uc *DashboardUseCase) Stats(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	stats, err := uc.repo.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("aggregate dashboard stats: %w", err)
	}
	return stats, nil
}

func (uc *DashboardUseCase) RecentDocuments(ctx context.Context, userID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	docs, err := uc.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent documents: %w", err)
	}
	return docs, nil
}
