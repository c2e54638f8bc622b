package interfaces

import (
	"context"

	"github.com/ternarybob/docify/internal/models"
)

// DocumentStorage - interface for document persistence
type DocumentStorage interface {
	// CRUD operations
	Save(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.Document, error)

	// Status operations
	UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, errorMessage string) error
	ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error)

	// Stats operations
	Count(ctx context.Context) (int, error)
	GetStats(ctx context.Context) (*models.DocumentStats, error)
}

// StorageManager aggregates storage services and owns the underlying database
type StorageManager interface {
	DocumentStorage() DocumentStorage
	Close() error
}
