package agent

import (
	"context"
	"fmt"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
	"github.com/ashureev/stockflow/internal/store"
)

// DataSource is the read side of the repository the assistants answer from.
type DataSource interface {
	store.CatalogReader
	store.MetricsReader
	store.PurchaseReader
}

// Service builds assistant snapshots for a user.
type Service struct {
	data DataSource
}

// NewService creates a snapshot service over data.
func NewService(data DataSource) *Service {
	return &Service{data: data}
}

// Snapshot loads the catalog plus whichever sales view user's role can see:
// dashboard metrics for staff, purchase history for customers.
func (s *Service) Snapshot(ctx context.Context, user domain.User) (assistant.Snapshot, error) {
	catalog, err := s.data.ListProducts(ctx)
	if err != nil {
		return assistant.Snapshot{}, fmt.Errorf("load catalog: %w", err)
	}

	snap := assistant.Snapshot{
		Catalog: catalog,
		Role:    user.Role,
		UserID:  user.ID,
	}

	if user.Role.Privileged() {
		snap.Metrics, err = s.data.DashboardMetrics(ctx)
		if err != nil {
			return assistant.Snapshot{}, fmt.Errorf("load metrics: %w", err)
		}
		return snap, nil
	}

	if user.ID != 0 {
		snap.Purchases, err = s.data.PurchaseHistory(ctx, user.ID)
		if err != nil {
			return assistant.Snapshot{}, fmt.Errorf("load purchase history: %w", err)
		}
	}
	return snap, nil
}

// Loader binds Snapshot to user.
func (s *Service) Loader(user domain.User) assistant.SnapshotLoader {
	return func(ctx context.Context) (assistant.Snapshot, error) {
		return s.Snapshot(ctx, user)
	}
}
