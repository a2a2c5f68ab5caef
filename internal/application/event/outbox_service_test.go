package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/shared"
)

type fakeOutboxRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{entries: map[uuid.UUID]*shared.OutboxEntry{}}
}

func (r *fakeOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeOutboxRepo) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) FindRetryable(_ context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusFailed && e.NextRetryAt != nil &&
			e.NextRetryAt.Before(before) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) FindDead(_ context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	total := int64(len(dead))
	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(dead) {
		end = len(dead)
	}
	return dead[start:end], total, nil
}

func (r *fakeOutboxRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *fakeOutboxRepo) FindByAggregate(_ context.Context, aggregateID uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkProcessing(_ context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*shared.OutboxEntry
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if err := e.MarkProcessing(); err == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeOutboxRepo) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, e := range r.entries {
		if e.Status == shared.OutboxStatusSent && e.CreatedAt.Before(before) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeOutboxRepo) CountByStatus(_ context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[shared.OutboxStatus]int64{}
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func seedEntry(repo *fakeOutboxRepo, status shared.OutboxStatus) *shared.OutboxEntry {
	event := shared.NewBaseDomainEvent("Lease.Activated", "Lease", uuid.New())
	entry := shared.NewOutboxEntry(&event, []byte(`{}`))
	switch status {
	case shared.OutboxStatusSent:
		entry.MarkSent()
	case shared.OutboxStatusDead:
		for i := 0; i < entry.MaxRetries; i++ {
			entry.MarkFailed("broker unavailable")
		}
	case shared.OutboxStatusFailed:
		entry.MarkFailed("broker unavailable")
	}
	repo.entries[entry.ID] = entry
	return entry
}

func TestOutboxService_GetStats(t *testing.T) {
	repo := newFakeOutboxRepo()
	seedEntry(repo, shared.OutboxStatusPending)
	seedEntry(repo, shared.OutboxStatusPending)
	seedEntry(repo, shared.OutboxStatusSent)
	seedEntry(repo, shared.OutboxStatusDead)

	svc := NewOutboxService(repo, zap.NewNop())
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Sent)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Zero(t, stats.Failed)
}

func TestOutboxService_GetDeadLetters(t *testing.T) {
	repo := newFakeOutboxRepo()
	for i := 0; i < 3; i++ {
		seedEntry(repo, shared.OutboxStatusDead)
	}
	seedEntry(repo, shared.OutboxStatusPending)

	svc := NewOutboxService(repo, zap.NewNop())
	page, err := svc.GetDeadLetters(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	// Out-of-range inputs are normalized
	page, err = svc.GetDeadLetters(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestOutboxService_RetryDeadLetter(t *testing.T) {
	repo := newFakeOutboxRepo()
	dead := seedEntry(repo, shared.OutboxStatusDead)
	pending := seedEntry(repo, shared.OutboxStatusPending)

	svc := NewOutboxService(repo, zap.NewNop())
	require.NoError(t, svc.RetryDeadLetter(context.Background(), dead.ID))
	assert.Equal(t, shared.OutboxStatusPending, dead.Status)
	assert.Zero(t, dead.RetryCount)

	err := svc.RetryDeadLetter(context.Background(), pending.ID)
	assert.True(t, shared.IsCode(err, shared.CodePrecondition), "only dead letters can be retried")

	err = svc.RetryDeadLetter(context.Background(), uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestOutboxService_GetEntriesForAggregate(t *testing.T) {
	repo := newFakeOutboxRepo()
	entry := seedEntry(repo, shared.OutboxStatusSent)
	seedEntry(repo, shared.OutboxStatusSent)

	svc := NewOutboxService(repo, zap.NewNop())
	entries, err := svc.GetEntriesForAggregate(context.Background(), entry.AggregateID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestOutboxService_CleanupSent(t *testing.T) {
	repo := newFakeOutboxRepo()
	old := seedEntry(repo, shared.OutboxStatusSent)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	seedEntry(repo, shared.OutboxStatusSent)
	seedEntry(repo, shared.OutboxStatusPending)

	svc := NewOutboxService(repo, zap.NewNop())
	deleted, err := svc.CleanupSent(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
