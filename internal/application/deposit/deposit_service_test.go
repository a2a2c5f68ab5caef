package deposit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/deposit"
	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/cache"
)

type fakeOperationRepo struct {
	mu         sync.Mutex
	operations []deposit.Operation
	attachErr  error
}

func (r *fakeOperationRepo) FindByLease(_ context.Context, leaseID uuid.UUID) ([]deposit.Operation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []deposit.Operation
	for i := range r.operations {
		if r.operations[i].LeaseID == leaseID {
			out = append(out, r.operations[i])
		}
	}
	return out, nil
}

func (r *fakeOperationRepo) Append(_ context.Context, op *deposit.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, *op)
	return nil
}

func (r *fakeOperationRepo) AttachDeductionsToLatestRetention(_ context.Context, leaseID uuid.UUID, deductions deposit.Deductions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return r.attachErr
	}
	for i := len(r.operations) - 1; i >= 0; i-- {
		if r.operations[i].LeaseID == leaseID && r.operations[i].Type == deposit.OperationTypeRetention {
			r.operations[i].Deductions = deductions
			return nil
		}
	}
	return shared.ErrNotFound
}

type fakeLeaseRepo struct {
	leases map[uuid.UUID]*lease.Lease
}

func (r *fakeLeaseRepo) FindByID(_ context.Context, id uuid.UUID) (*lease.Lease, error) {
	l, ok := r.leases[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *fakeLeaseRepo) FindByStatus(_ context.Context, _ lease.LeaseStatus) ([]lease.Lease, error) {
	return nil, nil
}

func (r *fakeLeaseRepo) Save(_ context.Context, l *lease.Lease) error {
	r.leases[l.ID] = l
	return nil
}

func (r *fakeLeaseRepo) SaveWithEvents(_ context.Context, l *lease.Lease, _ []shared.DomainEvent) error {
	r.leases[l.ID] = l
	return nil
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAudit struct {
	records []*shared.AuditRecord
}

func (f *fakeAudit) Append(_ context.Context, record *shared.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

type depositFixture struct {
	operations *fakeOperationRepo
	audit      *fakeAudit
	svc        *Service
	owner      shared.Actor
	leaseID    uuid.UUID
}

func newDepositFixture(t *testing.T) *depositFixture {
	t.Helper()
	owner := shared.NewActor(uuid.New(), shared.ActorRoleManager)
	l, err := lease.NewLease(owner.UserID, uuid.New(), lease.LeaseTypeUnfurnished,
		time.Now().AddDate(0, 0, -30), nil,
		decimal.NewFromInt(900), decimal.NewFromInt(900))
	require.NoError(t, err)

	operations := &fakeOperationRepo{}
	audit := &fakeAudit{}
	leases := &fakeLeaseRepo{leases: map[uuid.UUID]*lease.Lease{l.ID: l}}
	return &depositFixture{
		operations: operations,
		audit:      audit,
		svc:        NewService(operations, leases, noopLocker{}, audit, zap.NewNop()),
		owner:      owner,
		leaseID:    l.ID,
	}
}

func (f *depositFixture) append(t *testing.T, opType deposit.OperationType, amount int64) *OperationDTO {
	t.Helper()
	dto, err := f.svc.AppendOperation(context.Background(), f.owner, f.leaseID, AppendOperationRequest{
		Type:   opType,
		Amount: decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	return dto
}

func TestService_AppendOperation(t *testing.T) {
	f := newDepositFixture(t)

	dto := f.append(t, deposit.OperationTypeCollection, 900)
	assert.Equal(t, f.leaseID, dto.LeaseID)
	assert.False(t, dto.Date.IsZero())
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "deposit.append_operation", f.audit.records[0].Action)
}

func TestService_AppendOperation_CollectionCap(t *testing.T) {
	f := newDepositFixture(t)
	f.append(t, deposit.OperationTypeCollection, 600)

	_, err := f.svc.AppendOperation(context.Background(), f.owner, f.leaseID, AppendOperationRequest{
		Type:   deposit.OperationTypeCollection,
		Amount: decimal.NewFromInt(400),
	})
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
	assert.Contains(t, err.Error(), "dépasse le dépôt prévu")
	assert.Len(t, f.operations.operations, 1, "rejected operation is not appended")
}

func TestService_AppendOperation_BalanceFloor(t *testing.T) {
	f := newDepositFixture(t)
	f.append(t, deposit.OperationTypeCollection, 900)
	f.append(t, deposit.OperationTypeRelease, 800)

	_, err := f.svc.AppendOperation(context.Background(), f.owner, f.leaseID, AppendOperationRequest{
		Type:   deposit.OperationTypeRetention,
		Amount: decimal.NewFromInt(200),
	})
	assert.True(t, shared.IsCode(err, shared.CodePrecondition))
}

func TestService_AppendOperation_ConcurrentReleases(t *testing.T) {
	owner := shared.NewActor(uuid.New(), shared.ActorRoleManager)
	l, err := lease.NewLease(owner.UserID, uuid.New(), lease.LeaseTypeUnfurnished,
		time.Now().AddDate(0, 0, -30), nil,
		decimal.NewFromInt(900), decimal.NewFromInt(900))
	require.NoError(t, err)

	operations := &fakeOperationRepo{}
	leases := &fakeLeaseRepo{leases: map[uuid.UUID]*lease.Lease{l.ID: l}}
	svc := NewService(operations, leases, cache.NewInMemoryLeaseLocker(), &fakeAudit{}, zap.NewNop())

	_, err = svc.AppendOperation(context.Background(), owner, l.ID, AppendOperationRequest{
		Type:   deposit.OperationTypeCollection,
		Amount: decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	// Two full-balance releases race; the lock serializes them so the second
	// sees a drained ledger
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AppendOperation(context.Background(), owner, l.ID, AppendOperationRequest{
				Type:   deposit.OperationTypeRelease,
				Amount: decimal.NewFromInt(900),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if shared.IsCode(err, shared.CodePrecondition) {
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	stored, err := operations.FindByLease(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "one collection, one release")
	assert.True(t, deposit.Project(stored).Balance().IsZero())
}

func TestService_AppendOperation_RetentionDeductions(t *testing.T) {
	f := newDepositFixture(t)
	f.append(t, deposit.OperationTypeCollection, 900)

	dto, err := f.svc.AppendOperation(context.Background(), f.owner, f.leaseID, AppendOperationRequest{
		Type:   deposit.OperationTypeRetention,
		Amount: decimal.NewFromInt(150),
		Deductions: deposit.Deductions{
			{Label: "Ménage", Amount: decimal.NewFromInt(150)},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Deductions, 1)
	assert.Equal(t, "Ménage", dto.Deductions[0].Label)
}

func TestService_AppendOperation_DeductionFailureIsNotFatal(t *testing.T) {
	f := newDepositFixture(t)
	f.append(t, deposit.OperationTypeCollection, 900)
	f.operations.attachErr = assert.AnError

	dto, err := f.svc.AppendOperation(context.Background(), f.owner, f.leaseID, AppendOperationRequest{
		Type:   deposit.OperationTypeRetention,
		Amount: decimal.NewFromInt(150),
		Deductions: deposit.Deductions{
			{Label: "Ménage", Amount: decimal.NewFromInt(150)},
		},
	})
	require.NoError(t, err, "the money movement committed; the breakdown is best-effort")
	assert.Empty(t, dto.Deductions)
	assert.Len(t, f.operations.operations, 2)
}

func TestService_AppendOperation_Forbidden(t *testing.T) {
	f := newDepositFixture(t)
	stranger := shared.NewActor(uuid.New(), shared.ActorRoleManager)

	_, err := f.svc.AppendOperation(context.Background(), stranger, f.leaseID, AppendOperationRequest{
		Type:   deposit.OperationTypeCollection,
		Amount: decimal.NewFromInt(100),
	})
	assert.True(t, shared.IsCode(err, shared.CodeForbidden))
}

func TestService_GetDepositStatus(t *testing.T) {
	f := newDepositFixture(t)
	f.append(t, deposit.OperationTypeCollection, 900)
	f.append(t, deposit.OperationTypeRetention, 150)

	status, err := f.svc.GetDepositStatus(context.Background(), f.owner, f.leaseID)
	require.NoError(t, err)
	assert.True(t, status.Collected.Equal(decimal.NewFromInt(900)))
	assert.True(t, status.Retained.Equal(decimal.NewFromInt(150)))
	assert.True(t, status.Balance.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, deposit.StatusPartiallyRetained, status.Status)
	assert.Len(t, status.Operations, 2)
}

func TestService_GetDepositStatus_Empty(t *testing.T) {
	f := newDepositFixture(t)

	status, err := f.svc.GetDepositStatus(context.Background(), f.owner, f.leaseID)
	require.NoError(t, err)
	assert.Equal(t, deposit.StatusNone, status.Status)
	assert.True(t, status.Balance.IsZero())
	assert.Empty(t, status.Operations)
}
