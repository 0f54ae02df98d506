package repository

import (
	"context"

	"github.com/alexanderramin/agenda/internal/domain"
)

// ItemRepo stores time-boxed items grouped by their primary event.
type ItemRepo interface {
	ReplaceScope(ctx context.Context, primaryID string, items []domain.TimeBoxedItem) error
	ListScope(ctx context.Context, primaryID string) ([]domain.TimeBoxedItem, error)
	GetByID(ctx context.Context, id string) (*domain.TimeBoxedItem, error)
	ResolveID(ctx context.Context, prefix string) (string, error)
	ListPrimaries(ctx context.Context) ([]*domain.TimeBoxedItem, error)
	DeleteScope(ctx context.Context, primaryID string) error
}

// HistoryRepo stores the undo/redo stack of each primary event.
type HistoryRepo interface {
	Load(ctx context.Context, primaryID string) ([]domain.Command, int, error)
	Save(ctx context.Context, primaryID string, entries []domain.Command, cursor int) error
}
