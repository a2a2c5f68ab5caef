package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/bailflow/core/internal/domain/reconciliation"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier alerts administrators when a run finds error-severity findings
type Notifier interface {
	NotifyAdmins(ctx context.Context, subject, body string) shared.SideEffectOutcome
}

// Config tunes the engine
type Config struct {
	// OverdueThreshold is how old an open invoice must be to count as overdue
	OverdueThreshold time.Duration
	// SampleLimit bounds the offending-id sample kept per check result
	SampleLimit int
	// MismatchTolerance is the rounding slack allowed between an invoice
	// total and the sum of its confirmed payments
	MismatchTolerance decimal.Decimal
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		OverdueThreshold:  30 * 24 * time.Hour,
		SampleLimit:       20,
		MismatchTolerance: decimal.New(1, -2),
	}
}

// Engine runs the financial consistency checks: six independent checks over
// the invoice and payment ledgers, executed concurrently against a single
// snapshot-in-time view. Checks never repair data, with one exception: the
// overdue check performs the idempotent sent-to-late promotion.
//
// A query failure in a load-bearing check fails the whole run. Advisory
// checks degrade instead: the failure is recorded on the result and the run
// completes.
type Engine struct {
	invoices   billing.InvoiceRepository
	payments   billing.PaymentRepository
	mandates   billing.MandateRepository
	duplicates billing.DuplicatePaymentDetector
	runs       reconciliation.RunRepository
	events     shared.OutboxEventSaver
	notifier   Notifier
	cfg        Config
	logger     *zap.Logger
}

// NewEngine creates a reconciliation engine
func NewEngine(
	invoices billing.InvoiceRepository,
	payments billing.PaymentRepository,
	mandates billing.MandateRepository,
	duplicates billing.DuplicatePaymentDetector,
	runs reconciliation.RunRepository,
	events shared.OutboxEventSaver,
	notifier Notifier,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.OverdueThreshold <= 0 {
		cfg.OverdueThreshold = DefaultConfig().OverdueThreshold
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = DefaultConfig().SampleLimit
	}
	if cfg.MismatchTolerance.LessThanOrEqual(decimal.Zero) {
		cfg.MismatchTolerance = DefaultConfig().MismatchTolerance
	}
	return &Engine{
		invoices:   invoices,
		payments:   payments,
		mandates:   mandates,
		duplicates: duplicates,
		runs:       runs,
		events:     events,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
	}
}

type checkFunc func(ctx context.Context) reconciliation.CheckResult

// Run executes all checks concurrently, persists the run record, and alerts
// on error severity. The returned error reflects persistence problems only;
// findings are reported through the run itself.
func (e *Engine) Run(ctx context.Context) (*reconciliation.Run, error) {
	startedAt := time.Now()
	e.logger.Info("reconciliation run started")

	checks := []checkFunc{
		e.checkPaidWithoutPayment,
		e.checkDuplicatePayments,
		e.checkOverdueInvoices,
		e.checkAmountMismatch,
		e.checkOrphanPayments,
		e.checkExpiredMandates,
	}

	results := make([]reconciliation.CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check checkFunc) {
			defer wg.Done()
			results[i] = check(ctx)
		}(i, check)
	}
	wg.Wait()

	status := reconciliation.RunStatusCompleted
	for i := range results {
		if results[i].Error != "" && results[i].Name.IsLoadBearing() {
			status = reconciliation.RunStatusFailed
		}
	}

	run := reconciliation.NewRun(startedAt, time.Now(), status, results)
	if err := e.runs.Save(ctx, run); err != nil {
		return nil, err
	}

	e.logger.Info("reconciliation run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.String("overall", string(run.Overall)),
		zap.Duration("duration", run.Duration))

	if run.HasErrors() || run.Status == reconciliation.RunStatusFailed {
		e.alert(ctx, run)
	}
	return run, nil
}

// GetLatestRun returns the most recent run record
func (e *Engine) GetLatestRun(ctx context.Context) (*reconciliation.Run, error) {
	return e.runs.FindLatest(ctx)
}

func (e *Engine) alert(ctx context.Context, run *reconciliation.Run) {
	failing := run.FailingChecks()
	subject := fmt.Sprintf("Reconciliation run %s: %d failing check(s)", run.ID, len(failing))
	body := fmt.Sprintf("Run finished %s with status %s and overall severity %s.",
		run.FinishedAt.Format(time.RFC3339), run.Status, run.Overall)
	for i := range failing {
		body += fmt.Sprintf("\n- %s: %d record(s)", failing[i].Name, failing[i].Count)
	}

	outcome := e.notifier.NotifyAdmins(ctx, subject, body)
	if outcome == shared.SideEffectFailed {
		e.logger.Error("failed to notify admins of reconciliation findings",
			zap.String("run_id", run.ID.String()))
	}

	event := reconciliation.NewReconciliationErrorsEvent(run)
	if err := e.events.SaveEvents(ctx, nil, event); err != nil {
		e.logger.Error("failed to enqueue reconciliation errors event",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
}

// fatal marks a load-bearing check's query failure
func fatal(name reconciliation.CheckName, err error) reconciliation.CheckResult {
	return reconciliation.CheckResult{
		Name:     name,
		Severity: reconciliation.SeverityError,
		Error:    err.Error(),
	}
}

// checkPaidWithoutPayment flags paid invoices with no confirmed payment.
// Money was marked received that the payment ledger cannot account for.
func (e *Engine) checkPaidWithoutPayment(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckPaidWithoutPayment
	paid, err := e.invoices.FindPaid(ctx)
	if err != nil {
		return fatal(name, err)
	}
	var offending []uuid.UUID
	for i := range paid {
		payments, err := e.payments.FindConfirmedByInvoice(ctx, paid[i].ID)
		if err != nil {
			return fatal(name, err)
		}
		if len(payments) == 0 {
			offending = append(offending, paid[i].ID)
		}
	}
	return reconciliation.NewCheckResult(name, reconciliation.SeverityError, offending, e.cfg.SampleLimit)
}

// checkDuplicatePayments flags clusters of suspected double charges. Findings
// are warnings (a duplicate needs a human eye, not an alert storm); only the
// detector query itself failing is fatal.
func (e *Engine) checkDuplicatePayments(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckDuplicatePayments
	groups, err := e.duplicates.FindDuplicateGroups(ctx)
	if err != nil {
		return fatal(name, err)
	}
	var offending []uuid.UUID
	for i := range groups {
		offending = append(offending, groups[i].PaymentIDs...)
	}
	return reconciliation.NewCheckResult(name, reconciliation.SeverityWarning, offending, e.cfg.SampleLimit)
}

// checkOverdueInvoices promotes stale SENT invoices to LATE, then reports
// every open invoice past the threshold. Advisory: a query failure degrades.
func (e *Engine) checkOverdueInvoices(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckOverdueInvoices
	cutoff := time.Now().Add(-e.cfg.OverdueThreshold)

	promoted, err := e.invoices.PromoteSentToLate(ctx, cutoff)
	if err != nil {
		e.logger.Warn("sent-to-late promotion failed", zap.Error(err))
		return reconciliation.DegradedResult(name, err)
	}
	if promoted > 0 {
		e.logger.Info("promoted overdue invoices to LATE", zap.Int64("count", promoted))
	}

	overdue, err := e.invoices.FindOpenOlderThan(ctx, cutoff)
	if err != nil {
		return reconciliation.DegradedResult(name, err)
	}
	offending := make([]uuid.UUID, 0, len(overdue))
	for i := range overdue {
		offending = append(offending, overdue[i].ID)
	}
	result := reconciliation.NewCheckResult(name, reconciliation.SeverityWarning, offending, e.cfg.SampleLimit)
	result.Repaired = promoted
	return result
}

// checkAmountMismatch flags paid invoices whose confirmed payments differ
// from the invoiced total by more than the rounding tolerance.
func (e *Engine) checkAmountMismatch(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckAmountMismatch
	paid, err := e.invoices.FindPaid(ctx)
	if err != nil {
		return fatal(name, err)
	}
	var offending []uuid.UUID
	for i := range paid {
		payments, err := e.payments.FindConfirmedByInvoice(ctx, paid[i].ID)
		if err != nil {
			return fatal(name, err)
		}
		if len(payments) == 0 {
			// reported by the paid-without-payment check
			continue
		}
		total := decimal.Zero
		for j := range payments {
			total = total.Add(payments[j].Amount)
		}
		if total.Sub(paid[i].TotalAmount).Abs().GreaterThan(e.cfg.MismatchTolerance) {
			offending = append(offending, paid[i].ID)
		}
	}
	return reconciliation.NewCheckResult(name, reconciliation.SeverityError, offending, e.cfg.SampleLimit)
}

// checkOrphanPayments flags confirmed payments with no invoice reference.
// Warning severity on findings; the query failing is fatal.
func (e *Engine) checkOrphanPayments(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckOrphanPayments
	orphans, err := e.payments.FindOrphans(ctx)
	if err != nil {
		return fatal(name, err)
	}
	offending := make([]uuid.UUID, 0, len(orphans))
	for i := range orphans {
		offending = append(offending, orphans[i].ID)
	}
	return reconciliation.NewCheckResult(name, reconciliation.SeverityWarning, offending, e.cfg.SampleLimit)
}

// checkExpiredMandates flags active leases whose debit mandate is in a
// terminal failure state. Advisory: rent collection will start failing soon,
// but no money is wrong yet.
func (e *Engine) checkExpiredMandates(ctx context.Context) reconciliation.CheckResult {
	const name = reconciliation.CheckExpiredMandates
	failed, err := e.mandates.FindFailedOnActiveLeases(ctx)
	if err != nil {
		return reconciliation.DegradedResult(name, err)
	}
	offending := make([]uuid.UUID, 0, len(failed))
	for i := range failed {
		offending = append(offending, failed[i].ID)
	}
	return reconciliation.NewCheckResult(name, reconciliation.SeverityWarning, offending, e.cfg.SampleLimit)
}
