package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage persists documents in badgerhold.
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

// NewDocumentStorage creates a document storage service backed by db.
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// Save upserts a document, stamping timestamps.
func (s *DocumentStorage) Save(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Str("status", string(doc.Status)).
		Msg("Document saved")

	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStorage) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *DocumentStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}

	s.logger.Debug().Str("document_id", id).Msg("Document deleted")
	return nil
}

// List returns documents ordered by the store, paginated by limit and offset.
func (s *DocumentStorage) List(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var docs []*models.Document
	query := badgerhold.Where("ID").Ne("").Limit(limit).Skip(offset)
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus transitions a document to a new status. The error message is
// cleared on non-failed statuses.
func (s *DocumentStorage) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, errorMessage string) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid document status: %s", status)
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	doc.Status = status
	if status == models.DocumentStatusFailed {
		doc.ErrorMessage = errorMessage
	} else {
		doc.ErrorMessage = ""
	}

	return s.Save(ctx, doc)
}

// ListByStatus returns all documents with the given status.
func (s *DocumentStorage) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	var docs []*models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("Status").Eq(status)); err != nil {
		return nil, fmt.Errorf("failed to list documents by status %s: %w", status, err)
	}
	return docs, nil
}

// Count returns the total number of stored documents.
func (s *DocumentStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

// GetStats aggregates counts and word totals across the store.
func (s *DocumentStorage) GetStats(ctx context.Context) (*models.DocumentStats, error) {
	var docs []*models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to read documents for stats: %w", err)
	}

	stats := &models.DocumentStats{
		TotalDocuments:    len(docs),
		DocumentsByStatus: make(map[models.DocumentStatus]int),
	}

	for _, doc := range docs {
		stats.DocumentsByStatus[doc.Status]++
		stats.TotalWordCount += doc.WordCount
		if doc.UpdatedAt.After(stats.LastUpdated) {
			stats.LastUpdated = doc.UpdatedAt
		}
	}

	return stats, nil
}
