package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bailflow/core/internal/domain/billing"
	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
)

type fakeLeaseRepo struct {
	mu          sync.Mutex
	leases      map[uuid.UUID]*lease.Lease
	savedEvents []shared.DomainEvent
	saveErr     error
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{leases: map[uuid.UUID]*lease.Lease{}}
}

func (r *fakeLeaseRepo) FindByID(_ context.Context, id uuid.UUID) (*lease.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

func (r *fakeLeaseRepo) FindByStatus(_ context.Context, status lease.LeaseStatus) ([]lease.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lease.Lease
	for _, l := range r.leases {
		if l.Status == status {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeaseRepo) Save(_ context.Context, l *lease.Lease) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.leases[l.ID] = l
	return nil
}

func (r *fakeLeaseRepo) SaveWithEvents(_ context.Context, l *lease.Lease, events []shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.leases[l.ID] = l
	r.savedEvents = append(r.savedEvents, events...)
	return nil
}

func (r *fakeLeaseRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.savedEvents))
	for i, e := range r.savedEvents {
		types[i] = e.EventType()
	}
	return types
}

type fakeSignerRepo struct {
	mu      sync.Mutex
	signers map[uuid.UUID]*lease.Signer
}

func newFakeSignerRepo() *fakeSignerRepo {
	return &fakeSignerRepo{signers: map[uuid.UUID]*lease.Signer{}}
}

func (r *fakeSignerRepo) FindByID(_ context.Context, id uuid.UUID) (*lease.Signer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSignerRepo) FindByLease(_ context.Context, leaseID uuid.UUID) ([]lease.Signer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []lease.Signer
	for _, s := range r.signers {
		if s.LeaseID == leaseID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSignerRepo) Save(_ context.Context, s *lease.Signer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signers[s.ID] = s
	return nil
}

func (r *fakeSignerRepo) SaveAll(ctx context.Context, signers []lease.Signer) error {
	for i := range signers {
		s := signers[i]
		if err := r.Save(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}

type fakeInspectionRepo struct {
	mu          sync.Mutex
	inspections map[uuid.UUID]*lease.Inspection
	findErr     error
}

func newFakeInspectionRepo() *fakeInspectionRepo {
	return &fakeInspectionRepo{inspections: map[uuid.UUID]*lease.Inspection{}}
}

func (r *fakeInspectionRepo) FindByID(_ context.Context, id uuid.UUID) (*lease.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.inspections[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return i, nil
}

func (r *fakeInspectionRepo) FindActiveByLeaseAndKind(_ context.Context, leaseID uuid.UUID, kind lease.InspectionKind) (*lease.Inspection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, i := range r.inspections {
		if i.LeaseID == leaseID && i.Kind == kind && i.Status != lease.InspectionStatusCancelled {
			return i, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInspectionRepo) Save(_ context.Context, i *lease.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inspections[i.ID] = i
	return nil
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDocuments struct {
	mu          sync.Mutex
	generateKey string
	generateErr error
	generated   int
	deleted     []string
	deleteErr   error
}

func (d *fakeDocuments) GenerateSealedDocument(_ context.Context, l *lease.Lease, _ []lease.Signer) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generated++
	if d.generateErr != nil {
		return d.generateKey, d.generateErr
	}
	if d.generateKey != "" {
		return d.generateKey, nil
	}
	return "leases/" + l.ID.String() + "/sealed.txt", nil
}

func (d *fakeDocuments) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, key)
	return d.deleteErr
}

type fakeInvitations struct {
	mu      sync.Mutex
	sent    []uuid.UUID
	outcome shared.SideEffectOutcome
}

func (f *fakeInvitations) SendInvitation(_ context.Context, signer *lease.Signer) shared.SideEffectOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, signer.ID)
	if f.outcome == "" {
		return shared.SideEffectDelivered
	}
	return f.outcome
}

type fakeAudit struct {
	mu      sync.Mutex
	records []*shared.AuditRecord
}

func (f *fakeAudit) Append(_ context.Context, record *shared.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.records))
	for i, r := range f.records {
		out[i] = r.Action
	}
	return out
}

type fakeInvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]*billing.Invoice
	deleted   []uuid.UUID
	findErr   error
	deleteErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[uuid.UUID]*billing.Invoice{}}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) FindPaid(_ context.Context) ([]billing.Invoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) FindOpenOlderThan(_ context.Context, _ time.Time) ([]billing.Invoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) FindUnpaidByLease(_ context.Context, leaseID uuid.UUID) ([]billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []billing.Invoice
	for _, inv := range r.invoices {
		if inv.LeaseID == leaseID && !inv.IsPaid() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) PromoteSentToLate(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.invoices, id)
	r.deleted = append(r.deleted, id)
	return nil
}
