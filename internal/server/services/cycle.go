package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lastmessage-app/server/internal/logging"
)

// Report aggregates the outcome of one scheduled cycle.
type Report struct {
	ChecksIssued  int `json:"checks_issued"`
	UsersMissed   int `json:"users_missed"`
	UsersReleased int `json:"users_released"`
	Errors        int `json:"errors"`
}

// Cycle is the scheduled entry point: the issuer runs first, then the miss
// evaluator, sequentially. Both tolerate overlapping invocations, so an
// external scheduler firing while a slow run is still executing is safe.
type Cycle struct {
	checks    *CheckService
	evaluator *Evaluator
	logger    logging.Logger
}

func NewCycle(checks *CheckService, evaluator *Evaluator, logger logging.Logger) *Cycle {
	return &Cycle{checks: checks, evaluator: evaluator, logger: logger}
}

func (c *Cycle) Run(ctx context.Context) *Report {
	report := &Report{}

	// Correlates one run's log lines across the issuer and the evaluator.
	logger := c.logger.With("cycle_id", uuid.NewString())
	logger.Info(ctx, "cycle started")

	issued, failed := c.checks.IssueDueChecks(ctx)
	report.ChecksIssued = issued
	report.Errors += failed

	missed, released, failed := c.evaluator.Run(ctx)
	report.UsersMissed = missed
	report.UsersReleased = released
	report.Errors += failed

	logger.Info(ctx, "cycle finished",
		"checks_issued", report.ChecksIssued,
		"users_missed", report.UsersMissed,
		"users_released", report.UsersReleased,
		"errors", report.Errors)

	return report
}
