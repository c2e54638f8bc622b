package server

import (
	"net/http"
	"time"

	"github.com/ternarybob/docify/internal/handlers"
)

// SweepHandler forces a stale-run sweep outside the cron schedule.
// POST /api/scheduler/sweep
func (s *Server) SweepHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if !handlers.RequireMethod(w, r, "POST") {
		return
	}

	if s.app.SchedulerService == nil {
		handlers.WriteFailure(w, http.StatusServiceUnavailable, "scheduler is not enabled", nil, started)
		return
	}

	result, err := s.app.SchedulerService.SweepNow()
	if err != nil {
		s.app.Logger.Error().Err(err).Msg("Manual sweep failed")
		handlers.WriteFailure(w, http.StatusInternalServerError, err.Error(), nil, started)
		return
	}

	handlers.WriteResult(w, http.StatusOK, map[string]interface{}{
		"checked": result.Checked,
		"failed":  result.Failed,
		"run_at":  result.RunAt,
	}, started)
}
