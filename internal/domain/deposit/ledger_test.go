package deposit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailflow/core/internal/domain/shared"
)

func mustOp(t *testing.T, opType OperationType, amount int64) Operation {
	t.Helper()
	op, err := NewOperation(uuid.New(), opType, decimal.NewFromInt(amount), time.Now(), "")
	require.NoError(t, err)
	return *op
}

func TestProject(t *testing.T) {
	ops := []Operation{
		mustOp(t, OperationTypeCollection, 500),
		mustOp(t, OperationTypeCollection, 400),
		mustOp(t, OperationTypeRetention, 150),
		mustOp(t, OperationTypeRelease, 200),
	}

	l := Project(ops)
	assert.True(t, l.Collected.Equal(decimal.NewFromInt(900)))
	assert.True(t, l.Released.Equal(decimal.NewFromInt(200)))
	assert.True(t, l.Retained.Equal(decimal.NewFromInt(150)))
	assert.True(t, l.Balance().Equal(decimal.NewFromInt(550)))
}

func TestProject_Empty(t *testing.T) {
	l := Project(nil)
	assert.True(t, l.Balance().IsZero())
	assert.Equal(t, StatusNone, l.Status())
}

func TestLedger_Status(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want Status
	}{
		{"nothing collected", nil, StatusNone},
		{"collection only", []Operation{mustOp(t, OperationTypeCollection, 900)}, StatusActive},
		{"full release", []Operation{
			mustOp(t, OperationTypeCollection, 900),
			mustOp(t, OperationTypeRelease, 900),
		}, StatusRestituted},
		{"partial release keeps active", []Operation{
			mustOp(t, OperationTypeCollection, 900),
			mustOp(t, OperationTypeRelease, 300),
		}, StatusActive},
		{"any retention", []Operation{
			mustOp(t, OperationTypeCollection, 900),
			mustOp(t, OperationTypeRetention, 100),
		}, StatusPartiallyRetained},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Project(tt.ops).Status())
		})
	}
}

func TestLedger_Validate_CollectionCap(t *testing.T) {
	deposit := decimal.NewFromInt(900)
	l := Project([]Operation{mustOp(t, OperationTypeCollection, 600)})

	op := mustOp(t, OperationTypeCollection, 300)
	assert.NoError(t, l.Validate(&op, deposit), "reaching the cap exactly is allowed")

	over := mustOp(t, OperationTypeCollection, 301)
	err := l.Validate(&over, deposit)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
	assert.Contains(t, err.Error(), "dépasse le dépôt prévu")
}

func TestLedger_Validate_BalanceFloor(t *testing.T) {
	deposit := decimal.NewFromInt(900)
	l := Project([]Operation{
		mustOp(t, OperationTypeCollection, 900),
		mustOp(t, OperationTypeRelease, 700),
	})

	release := mustOp(t, OperationTypeRelease, 200)
	assert.NoError(t, l.Validate(&release, deposit), "draining to zero is allowed")

	retention := mustOp(t, OperationTypeRetention, 201)
	err := l.Validate(&retention, deposit)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
	assert.Contains(t, err.Error(), "exceeds the current deposit balance")
}

func TestNewOperation_Validation(t *testing.T) {
	leaseID := uuid.New()

	_, err := NewOperation(leaseID, OperationTypeCollection, decimal.Zero, time.Now(), "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = NewOperation(leaseID, OperationTypeCollection, decimal.NewFromInt(-5), time.Now(), "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	_, err = NewOperation(leaseID, OperationType("REFUND"), decimal.NewFromInt(100), time.Now(), "")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	op, err := NewOperation(leaseID, OperationTypeRelease, decimal.NewFromInt(100), time.Time{}, "restitution")
	require.NoError(t, err)
	assert.False(t, op.Date.IsZero(), "zero date defaults to now")
}

func TestOperation_AttachDeductions(t *testing.T) {
	retention := mustOp(t, OperationTypeRetention, 150)
	deductions := Deductions{
		{Label: "Ménage", Amount: decimal.NewFromInt(100)},
		{Label: "Peinture", Amount: decimal.NewFromInt(50)},
	}
	require.NoError(t, retention.AttachDeductions(deductions))
	assert.True(t, retention.Deductions.Total().Equal(decimal.NewFromInt(150)))

	collection := mustOp(t, OperationTypeCollection, 100)
	err := collection.AttachDeductions(deductions)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}
