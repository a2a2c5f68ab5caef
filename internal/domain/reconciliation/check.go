package reconciliation

import (
	"github.com/google/uuid"
)

// CheckName identifies one consistency check of the engine
type CheckName string

const (
	CheckPaidWithoutPayment CheckName = "PAID_WITHOUT_CONFIRMED_PAYMENT"
	CheckDuplicatePayments  CheckName = "DUPLICATE_PAYMENTS"
	CheckOverdueInvoices    CheckName = "OVERDUE_INVOICES"
	CheckAmountMismatch     CheckName = "AMOUNT_MISMATCH"
	CheckOrphanPayments     CheckName = "ORPHAN_PAYMENTS"
	CheckExpiredMandates    CheckName = "EXPIRED_MANDATES_ON_ACTIVE_LEASES"
)

// AllCheckNames returns every check the engine runs
func AllCheckNames() []CheckName {
	return []CheckName{
		CheckPaidWithoutPayment,
		CheckDuplicatePayments,
		CheckOverdueInvoices,
		CheckAmountMismatch,
		CheckOrphanPayments,
		CheckExpiredMandates,
	}
}

// IsLoadBearing reports whether a query failure in this check must fail the
// whole run. Financial-correctness checks are load-bearing; overdue invoices
// and expired mandates are advisory and may degrade.
func (n CheckName) IsLoadBearing() bool {
	switch n {
	case CheckPaidWithoutPayment, CheckDuplicatePayments, CheckAmountMismatch, CheckOrphanPayments:
		return true
	}
	return false
}

// Severity classifies a check outcome
type Severity string

const (
	SeverityOK      Severity = "OK"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Worse returns the more severe of two severities
func (s Severity) Worse(other Severity) Severity {
	rank := func(v Severity) int {
		switch v {
		case SeverityError:
			return 2
		case SeverityWarning:
			return 1
		default:
			return 0
		}
	}
	if rank(other) > rank(s) {
		return other
	}
	return s
}

// CheckResult is the outcome of one consistency check: a severity, the number
// of offending records and a bounded sample of their ids.
type CheckResult struct {
	Name     CheckName   `json:"name"`
	Severity Severity    `json:"severity"`
	Count    int         `json:"count"`
	Sample   []uuid.UUID `json:"sample,omitempty"`
	Repaired int64       `json:"repaired,omitempty"` // rows auto-repaired as a side effect
	Degraded bool        `json:"degraded,omitempty"` // true if the underlying query failed on an advisory check
	Error    string      `json:"error,omitempty"`
}

// OKResult returns a clean result for the check
func OKResult(name CheckName) CheckResult {
	return CheckResult{Name: name, Severity: SeverityOK}
}

// DegradedResult converts an advisory check's query failure into an
// ok/0-count result that still records what went wrong.
func DegradedResult(name CheckName, err error) CheckResult {
	return CheckResult{
		Name:     name,
		Severity: SeverityOK,
		Degraded: true,
		Error:    err.Error(),
	}
}

// NewCheckResult builds a result from the offending record ids, keeping at
// most sampleLimit ids as the reported sample.
func NewCheckResult(name CheckName, severity Severity, offending []uuid.UUID, sampleLimit int) CheckResult {
	if len(offending) == 0 {
		return OKResult(name)
	}
	sample := offending
	if sampleLimit > 0 && len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}
	return CheckResult{
		Name:     name,
		Severity: severity,
		Count:    len(offending),
		Sample:   sample,
	}
}
