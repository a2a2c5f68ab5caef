package reconciliation

import (
	"time"

	"github.com/bailflow/core/internal/domain/shared"
)

// EventTypeReconciliationErrors tags the event emitted when a run finds
// error-severity inconsistencies.
const EventTypeReconciliationErrors = "System.ReconciliationErrors"

// ReconciliationErrorsEvent carries the failing checks of a run
type ReconciliationErrorsEvent struct {
	shared.BaseDomainEvent
	RunID         string        `json:"run_id"`
	FinishedAt    time.Time     `json:"finished_at"`
	FailingChecks []CheckResult `json:"failing_checks"`
}

// NewReconciliationErrorsEvent creates the event from a finished run
func NewReconciliationErrorsEvent(run *Run) *ReconciliationErrorsEvent {
	return &ReconciliationErrorsEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReconciliationErrors, "ReconciliationRun", run.ID),
		RunID:           run.ID.String(),
		FinishedAt:      run.FinishedAt,
		FailingChecks:   run.FailingChecks(),
	}
}
