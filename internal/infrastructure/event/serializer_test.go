package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailflow/core/internal/domain/lease"
)

func activatedEvent(t *testing.T) *lease.LeaseActivatedEvent {
	t.Helper()
	l, err := lease.NewLease(uuid.New(), uuid.New(), lease.LeaseTypeUnfurnished,
		time.Now().AddDate(0, 0, -1), nil,
		decimal.NewFromInt(900), decimal.NewFromInt(900))
	require.NoError(t, err)
	return lease.NewLeaseActivatedEvent(l, false)
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewDefaultSerializer()
	original := activatedEvent(t)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	restored, err := s.Deserialize(lease.EventTypeLeaseActivated, data)
	require.NoError(t, err)

	got, ok := restored.(*lease.LeaseActivatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, original.LeaseID, got.LeaseID)
	assert.True(t, original.RentAmount.Equal(got.RentAmount))
	assert.Equal(t, lease.EventTypeLeaseActivated, got.EventType())
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewDefaultSerializer()
	_, err := s.Deserialize("Lease.Painted", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestDefaultSerializer_RegistersAllEmittedEvents(t *testing.T) {
	s := NewDefaultSerializer()
	for _, eventType := range []string{
		lease.EventTypeLeaseActivated,
		lease.EventTypeLeaseFullySigned,
		lease.EventTypeLeaseSealed,
		lease.EventTypeLeaseTerminated,
		lease.EventTypeLeaseReset,
		lease.EventTypeKeyHandoverCreated,
		"System.ReconciliationErrors",
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
}
