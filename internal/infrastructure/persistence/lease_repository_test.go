package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/domain/shared"
	"github.com/bailflow/core/internal/infrastructure/persistence/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LeaseModel{}))
	return db
}

type capturingEventSaver struct {
	events []shared.DomainEvent
	txs    []interface{}
}

func (c *capturingEventSaver) SaveEvents(_ context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	c.events = append(c.events, events...)
	c.txs = append(c.txs, txProvider)
	return nil
}

func newPersistedLease(t *testing.T, repo *GormLeaseRepository) *lease.Lease {
	t.Helper()
	l, err := lease.NewLease(uuid.New(), uuid.New(), lease.LeaseTypeUnfurnished,
		time.Now().AddDate(0, 0, -1), nil,
		decimal.NewFromInt(900), decimal.NewFromInt(900))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), l))
	return l
}

func TestGormLeaseRepository_SaveAndFind(t *testing.T) {
	repo := NewGormLeaseRepository(newTestDB(t))
	l := newPersistedLease(t, repo)

	found, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, found.ID)
	assert.Equal(t, lease.LeaseStatusDraft, found.Status)
	assert.True(t, found.RentAmount.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, 1, found.Version)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeNotFound))
}

func TestGormLeaseRepository_FindByStatus(t *testing.T) {
	repo := NewGormLeaseRepository(newTestDB(t))
	draft := newPersistedLease(t, repo)
	pending := newPersistedLease(t, repo)
	require.NoError(t, pending.MarkPendingSignature())
	require.NoError(t, repo.Save(context.Background(), pending))

	drafts, err := repo.FindByStatus(context.Background(), lease.LeaseStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)
}

func TestGormLeaseRepository_SaveWithEvents(t *testing.T) {
	repo := NewGormLeaseRepository(newTestDB(t))
	saver := &capturingEventSaver{}
	repo.SetOutboxEventSaver(saver)

	l := newPersistedLease(t, repo)
	require.NoError(t, l.MarkPendingSignature())
	require.NoError(t, l.MarkFullySigned())

	events := l.GetDomainEvents()
	require.NoError(t, repo.SaveWithEvents(context.Background(), l, events))
	assert.Equal(t, 2, l.Version)

	found, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, lease.LeaseStatusFullySigned, found.Status)
	assert.Equal(t, 2, found.Version)

	require.Len(t, saver.events, 1)
	assert.Equal(t, "Lease.FullySigned", saver.events[0].EventType())
	// Events are saved inside the same transaction
	_, isTx := saver.txs[0].(*gorm.DB)
	assert.True(t, isTx)
}

func TestGormLeaseRepository_SaveWithEvents_StaleVersionConflicts(t *testing.T) {
	repo := NewGormLeaseRepository(newTestDB(t))
	l := newPersistedLease(t, repo)

	// Another request bumps the stored version
	stale, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	require.NoError(t, l.MarkPendingSignature())
	require.NoError(t, repo.SaveWithEvents(context.Background(), l, nil))

	require.NoError(t, stale.MarkPendingSignature())
	err = repo.SaveWithEvents(context.Background(), stale, nil)
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeConflict))

	// The stored lease kept the winning write
	found, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Version)
}

func TestGormLeaseRepository_SaveWithEvents_SealRoundTrip(t *testing.T) {
	repo := NewGormLeaseRepository(newTestDB(t))
	l := newPersistedLease(t, repo)
	require.NoError(t, l.MarkPendingSignature())
	require.NoError(t, repo.SaveWithEvents(context.Background(), l, nil))
	require.NoError(t, l.MarkFullySigned())
	require.NoError(t, l.Seal("leases/"+l.ID.String()+"/sealed-1.txt"))
	require.NoError(t, repo.SaveWithEvents(context.Background(), l, nil))

	found, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, found.IsSealed())
	assert.Equal(t, l.SealedDocKey, found.SealedDocKey)
	require.NotNil(t, found.SealedAt)
}
