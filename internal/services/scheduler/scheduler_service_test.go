package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
)

type memoryStorage struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{docs: make(map[string]*models.Document)}
}

func (m *memoryStorage) Save(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *memoryStorage) Get(ctx context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	copied := *doc
	return &copied, nil
}

func (m *memoryStorage) Delete(ctx context.Context, id string) error { return nil }

func (m *memoryStorage) List(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	return nil, nil
}

func (m *memoryStorage) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	return nil
}

func (m *memoryStorage) ListByStatus(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []*models.Document
	for _, doc := range m.docs {
		if doc.Status == status {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}

func (m *memoryStorage) Count(ctx context.Context) (int, error) { return len(m.docs), nil }

func (m *memoryStorage) GetStats(ctx context.Context) (*models.DocumentStats, error) {
	return &models.DocumentStats{}, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []interfaces.StatusEvent
}

func (r *recordingEvents) PublishStatus(event interfaces.StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEvents) HandleWebSocket(w http.ResponseWriter, req *http.Request) {}
func (r *recordingEvents) ClientCount() int                                         { return 0 }
func (r *recordingEvents) Close() error                                             { return nil }

func staleDoc(id string, status models.DocumentStatus, age time.Duration) *models.Document {
	doc := models.NewDocument("https://docs.example.com/"+id, "Example", "", "")
	doc.ID = id
	doc.Status = status
	doc.UpdatedAt = time.Now().Add(-age)
	return doc
}

func newTestSweeper(storage *memoryStorage, events *recordingEvents) *Service {
	config := common.NewDefaultConfig()
	config.Scheduler.StaleAfter = "30m"
	return NewService(config, arbor.NewLogger(), storage, events)
}

func TestSweepFailsStaleRuns(t *testing.T) {
	storage := newMemoryStorage()
	events := &recordingEvents{}
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, staleDoc("doc_stale_scrape", models.DocumentStatusScraping, time.Hour)))
	require.NoError(t, storage.Save(ctx, staleDoc("doc_stale_analyze", models.DocumentStatusAnalyzing, 2*time.Hour)))
	require.NoError(t, storage.Save(ctx, staleDoc("doc_fresh", models.DocumentStatusScraping, time.Minute)))
	require.NoError(t, storage.Save(ctx, staleDoc("doc_done", models.DocumentStatusCompleted, time.Hour)))

	sweeper := newTestSweeper(storage, events)

	result, err := sweeper.SweepNow()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 2, result.Failed)

	stale, err := storage.Get(ctx, "doc_stale_scrape")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusFailed, stale.Status)
	assert.Contains(t, stale.ErrorMessage, "stale")

	fresh, err := storage.Get(ctx, "doc_fresh")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusScraping, fresh.Status)

	done, err := storage.Get(ctx, "doc_done")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCompleted, done.Status)

	assert.Len(t, events.events, 2)
}

func TestSweepEmptyStore(t *testing.T) {
	sweeper := newTestSweeper(newMemoryStorage(), &recordingEvents{})

	result, err := sweeper.SweepNow()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Checked)
	assert.Equal(t, 0, result.Failed)
}

func TestSchedulerStartStop(t *testing.T) {
	sweeper := newTestSweeper(newMemoryStorage(), &recordingEvents{})

	assert.False(t, sweeper.IsRunning())
	require.NoError(t, sweeper.Start("*/10 * * * *"))
	assert.True(t, sweeper.IsRunning())

	// Double start is rejected.
	assert.Error(t, sweeper.Start("*/10 * * * *"))

	require.NoError(t, sweeper.Stop())
	assert.False(t, sweeper.IsRunning())

	// Stopping an idle scheduler is fine.
	assert.NoError(t, sweeper.Stop())
}

func TestSchedulerRejectsBadCronExpr(t *testing.T) {
	sweeper := newTestSweeper(newMemoryStorage(), &recordingEvents{})
	assert.Error(t, sweeper.Start("not a cron expr"))
}
