package reconciliation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSeverity_Worse(t *testing.T) {
	assert.Equal(t, SeverityOK, SeverityOK.Worse(SeverityOK))
	assert.Equal(t, SeverityWarning, SeverityOK.Worse(SeverityWarning))
	assert.Equal(t, SeverityWarning, SeverityWarning.Worse(SeverityOK))
	assert.Equal(t, SeverityError, SeverityWarning.Worse(SeverityError))
	assert.Equal(t, SeverityError, SeverityError.Worse(SeverityWarning))
}

func TestCheckName_IsLoadBearing(t *testing.T) {
	loadBearing := map[CheckName]bool{
		CheckPaidWithoutPayment: true,
		CheckDuplicatePayments:  true,
		CheckAmountMismatch:     true,
		CheckOrphanPayments:     true,
		CheckOverdueInvoices:    false,
		CheckExpiredMandates:    false,
	}
	for _, name := range AllCheckNames() {
		assert.Equal(t, loadBearing[name], name.IsLoadBearing(), string(name))
	}
}

func TestNewCheckResult_Sampling(t *testing.T) {
	offending := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	r := NewCheckResult(CheckDuplicatePayments, SeverityError, offending, 2)
	assert.Equal(t, 4, r.Count)
	assert.Len(t, r.Sample, 2)
	assert.Equal(t, SeverityError, r.Severity)

	r = NewCheckResult(CheckOverdueInvoices, SeverityWarning, nil, 2)
	assert.Equal(t, SeverityOK, r.Severity, "no offenders means a clean result")
	assert.Zero(t, r.Count)
}

func TestDegradedResult(t *testing.T) {
	r := DegradedResult(CheckExpiredMandates, errors.New("connection refused"))
	assert.Equal(t, SeverityOK, r.Severity)
	assert.True(t, r.Degraded)
	assert.Equal(t, "connection refused", r.Error)
	assert.Zero(t, r.Count)
}
