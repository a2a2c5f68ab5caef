package deposit

import (
	"fmt"

	"github.com/bailflow/core/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status classifies the derived state of a lease's deposit
type Status string

const (
	StatusNone              Status = "NONE"               // nothing collected yet
	StatusActive            Status = "ACTIVE"             // balance held, no restitution yet
	StatusRestituted        Status = "RESTITUTED"         // a release brought balance to exactly 0
	StatusPartiallyRetained Status = "PARTIALLY_RETAINED" // at least one retention occurred
)

// Ledger is the pure projection over a lease's append-only operation log.
// It is recomputed from the log on every read and never persisted, so the
// derived balance cannot drift from the operations that produced it.
type Ledger struct {
	Collected decimal.Decimal
	Released  decimal.Decimal
	Retained  decimal.Decimal
}

// Project folds the operation log into a Ledger
func Project(operations []Operation) Ledger {
	l := Ledger{
		Collected: decimal.Zero,
		Released:  decimal.Zero,
		Retained:  decimal.Zero,
	}
	for i := range operations {
		switch operations[i].Type {
		case OperationTypeCollection:
			l.Collected = l.Collected.Add(operations[i].Amount)
		case OperationTypeRelease:
			l.Released = l.Released.Add(operations[i].Amount)
		case OperationTypeRetention:
			l.Retained = l.Retained.Add(operations[i].Amount)
		}
	}
	return l
}

// Balance returns collections minus releases minus retentions
func (l Ledger) Balance() decimal.Decimal {
	return l.Collected.Sub(l.Released).Sub(l.Retained)
}

// Status classifies the deposit from the projected totals
func (l Ledger) Status() Status {
	switch {
	case l.Retained.GreaterThan(decimal.Zero):
		return StatusPartiallyRetained
	case l.Released.GreaterThan(decimal.Zero) && l.Balance().IsZero():
		return StatusRestituted
	case l.Collected.GreaterThan(decimal.Zero):
		return StatusActive
	default:
		return StatusNone
	}
}

// Validate runs the append guards for op against the projected log state.
// Validation order: positive amount and known type are checked at
// construction; here the collection cap and the balance floor are enforced.
func (l Ledger) Validate(op *Operation, depositAmount decimal.Decimal) error {
	switch op.Type {
	case OperationTypeCollection:
		total := l.Collected.Add(op.Amount)
		if total.GreaterThan(depositAmount) {
			return shared.NewPreconditionError(
				fmt.Sprintf("%s€ dépasse le dépôt prévu (%s€)", total.String(), depositAmount.String())).
				WithDetail("requested_total", total.String()).
				WithDetail("deposit_amount", depositAmount.String())
		}
	case OperationTypeRelease, OperationTypeRetention:
		balance := l.Balance()
		if op.Amount.GreaterThan(balance) {
			return shared.NewPreconditionError(
				fmt.Sprintf("Amount %s€ exceeds the current deposit balance (%s€)", op.Amount.String(), balance.String())).
				WithDetail("amount", op.Amount.String()).
				WithDetail("balance", balance.String())
		}
	}
	return nil
}
