package reconciliation

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/bailflow/core/internal/domain/shared"
)

// RunStatus classifies a whole engine run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED" // a load-bearing check's query errored
)

// CheckResults is a slice of CheckResult stored as JSONB on the run record
type CheckResults []CheckResult

// Value implements driver.Valuer for JSONB storage
func (r CheckResults) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB storage
func (r *CheckResults) Scan(value interface{}) error {
	if value == nil {
		*r = CheckResults{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CheckResults: unsupported type")
	}
	if len(bytes) == 0 {
		*r = CheckResults{}
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// Run is the audit record of one reconciliation pass
type Run struct {
	shared.BaseEntity
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Status     RunStatus
	Overall    Severity
	Results    CheckResults
}

// NewRun assembles the audit record from the collected check results
func NewRun(startedAt, finishedAt time.Time, status RunStatus, results []CheckResult) *Run {
	overall := SeverityOK
	for i := range results {
		overall = overall.Worse(results[i].Severity)
	}
	return &Run{
		BaseEntity: shared.NewBaseEntity(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Status:     status,
		Overall:    overall,
		Results:    results,
	}
}

// HasErrors reports whether any check produced error severity
func (r *Run) HasErrors() bool {
	return r.Overall == SeverityError
}

// FailingChecks returns the results with error severity
func (r *Run) FailingChecks() []CheckResult {
	var failing []CheckResult
	for i := range r.Results {
		if r.Results[i].Severity == SeverityError {
			failing = append(failing, r.Results[i])
		}
	}
	return failing
}

// RunRepository persists reconciliation run audit records
type RunRepository interface {
	Save(ctx context.Context, run *Run) error
	FindLatest(ctx context.Context) (*Run, error)
}
