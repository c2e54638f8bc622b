package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestStorage(t *testing.T) *DocumentStorage {
	t.Helper()

	dir := t.TempDir()
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewDocumentStorage(db, arbor.NewLogger())
}

func TestDocumentSaveAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := models.NewDocument("https://docs.example.com", "Example Docs", "", "")
	require.NoError(t, storage.Save(ctx, doc))

	got, err := storage.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "https://docs.example.com", got.URL)
	assert.Equal(t, models.DocumentStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestDocumentSaveStampsTimestamps(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := models.NewDocument("https://docs.example.com", "Example", "", "")
	created := doc.CreatedAt
	require.NoError(t, storage.Save(ctx, doc))

	time.Sleep(5 * time.Millisecond)
	doc.Title = "Updated"
	require.NoError(t, storage.Save(ctx, doc))

	got, err := storage.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestDocumentGetMissing(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Get(context.Background(), "doc_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestDocumentDeleteTolerant(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := models.NewDocument("https://docs.example.com", "Example", "", "")
	require.NoError(t, storage.Save(ctx, doc))
	require.NoError(t, storage.Delete(ctx, doc.ID))

	_, err := storage.Get(ctx, doc.ID)
	require.Error(t, err)

	// Deleting again is not an error.
	assert.NoError(t, storage.Delete(ctx, doc.ID))
}

func TestDocumentListPagination(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		doc := models.NewDocument("https://docs.example.com", "Example", "", "")
		require.NoError(t, storage.Save(ctx, doc))
	}

	page, err := storage.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := storage.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestDocumentUpdateStatus(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	doc := models.NewDocument("https://docs.example.com", "Example", "", "")
	require.NoError(t, storage.Save(ctx, doc))

	require.NoError(t, storage.UpdateStatus(ctx, doc.ID, models.DocumentStatusFailed, "analysis timed out"))

	got, err := storage.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusFailed, got.Status)
	assert.Equal(t, "analysis timed out", got.ErrorMessage)

	// Moving out of failed clears the error message.
	require.NoError(t, storage.UpdateStatus(ctx, doc.ID, models.DocumentStatusScraping, ""))

	got, err = storage.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusScraping, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestDocumentUpdateStatusRejectsUnknown(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.UpdateStatus(context.Background(), "doc_x", models.DocumentStatus("archived"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document status")
}

func TestDocumentListByStatus(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc := models.NewDocument("https://docs.example.com", "Example", "", "")
		if i == 0 {
			doc.Status = models.DocumentStatusCompleted
		}
		require.NoError(t, storage.Save(ctx, doc))
	}

	pending, err := storage.ListByStatus(ctx, models.DocumentStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	completed, err := storage.ListByStatus(ctx, models.DocumentStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestDocumentStats(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := models.NewDocument("https://docs.example.com/a", "A", "", "")
	first.Status = models.DocumentStatusCompleted
	first.WordCount = 1200
	require.NoError(t, storage.Save(ctx, first))

	second := models.NewDocument("https://docs.example.com/b", "B", "", "")
	second.WordCount = 300
	require.NoError(t, storage.Save(ctx, second))

	count, err := storage.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 1500, stats.TotalWordCount)
	assert.Equal(t, 1, stats.DocumentsByStatus[models.DocumentStatusCompleted])
	assert.Equal(t, 1, stats.DocumentsByStatus[models.DocumentStatusPending])
	assert.False(t, stats.LastUpdated.IsZero())
}
