// -------------------------------------------------------------------------
// Scheduler runs the stale-run sweeper: documents stuck in scraping or
// analyzing past the configured threshold are failed so a crashed run
// never wedges a document.
// -------------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docify/internal/common"
	"github.com/ternarybob/docify/internal/interfaces"
	"github.com/ternarybob/docify/internal/models"
)

// sweepStatuses are the non-terminal pipeline states a crashed run can
// leave behind.
var sweepStatuses = []models.DocumentStatus{
	models.DocumentStatusScraping,
	models.DocumentStatusAnalyzing,
}

// Service implements SchedulerService over robfig/cron.
type Service struct {
	config  *common.Config
	logger  arbor.ILogger
	storage interfaces.DocumentStorage
	events  interfaces.EventService
	cron    *cron.Cron

	mu       sync.Mutex
	running  bool
	sweeping bool
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates the sweeper service.
func NewService(config *common.Config, logger arbor.ILogger, storage interfaces.DocumentStorage, events interfaces.EventService) *Service {
	return &Service{
		config:  config,
		logger:  logger,
		storage: storage,
		events:  events,
		cron:    cron.New(),
	}
}

// Start begins the scheduler with the given cron expression.
func (s *Service) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if cronExpr == "" {
		cronExpr = "*/10 * * * *" // Default: every 10 minutes
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runSweep); err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Str("stale_after", s.config.StaleAfter().String()).
		Msg("Stale-run sweeper started")

	return nil
}

// Stop halts the scheduler.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cron.Stop()
	s.running = false

	s.logger.Info().Msg("Stale-run sweeper stopped")
	return nil
}

// IsRunning returns true if scheduler is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SweepNow runs one sweep immediately.
func (s *Service) SweepNow() (*interfaces.SweepResult, error) {
	return s.sweep(context.Background())
}

// runSweep is the cron entry point. Overlapping sweeps are skipped.
func (s *Service) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in stale-run sweep")
		}
	}()

	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Debug().Msg("Sweep already in progress, skipping this cycle")
		return
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	if _, err := s.sweep(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Stale-run sweep failed")
	}
}

func (s *Service) sweep(ctx context.Context) (*interfaces.SweepResult, error) {
	result := &interfaces.SweepResult{RunAt: time.Now()}
	cutoff := result.RunAt.Add(-s.config.StaleAfter())

	for _, status := range sweepStatuses {
		docs, err := s.storage.ListByStatus(ctx, status)
		if err != nil {
			return result, fmt.Errorf("failed to list %s documents: %w", status, err)
		}

		for _, doc := range docs {
			result.Checked++
			if doc.UpdatedAt.After(cutoff) {
				continue
			}

			reason := fmt.Sprintf("Run went stale in %s (no update since %s)", doc.Status, doc.UpdatedAt.Format(time.RFC3339))
			if err := s.storage.UpdateStatus(ctx, doc.ID, models.DocumentStatusFailed, reason); err != nil {
				s.logger.Warn().
					Err(err).
					Str("document_id", doc.ID).
					Msg("Failed to mark stale document")
				continue
			}

			result.Failed++
			s.logger.Warn().
				Str("document_id", doc.ID).
				Str("stuck_in", string(status)).
				Msg("Marked stale run as failed")

			if s.events != nil {
				s.events.PublishStatus(interfaces.StatusEvent{
					DocumentID: doc.ID,
					Status:     models.DocumentStatusFailed,
					Message:    reason,
					Timestamp:  time.Now(),
				})
			}
		}
	}

	if result.Failed > 0 {
		s.logger.Info().
			Int("checked", result.Checked).
			Int("failed", result.Failed).
			Msg("Stale-run sweep completed")
	}

	return result, nil
}
