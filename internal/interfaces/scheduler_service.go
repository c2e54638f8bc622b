package interfaces

import "time"

// SweepResult summarizes one stale-run sweep.
type SweepResult struct {
	Checked int
	Failed  int
	RunAt   time.Time
}

// SchedulerService manages the cron-based stale-run sweeper
type SchedulerService interface {
	// Start the scheduler with a cron expression
	Start(cronExpr string) error

	// Stop the scheduler
	Stop() error

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// SweepNow runs one sweep immediately
	SweepNow() (*SweepResult, error)
}
