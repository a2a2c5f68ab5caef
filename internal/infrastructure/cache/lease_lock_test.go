package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLeaseLocker_SerializesSameLease(t *testing.T) {
	locker := NewInMemoryLeaseLocker()
	leaseID := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), leaseID, func(ctx context.Context) error {
				counter++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, counter)
}

func TestInMemoryLeaseLocker_IndependentLeases(t *testing.T) {
	locker := NewInMemoryLeaseLocker()

	first := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), uuid.New(), func(ctx context.Context) error {
			close(first)
			<-release
			return nil
		})
	}()
	<-first

	// A different lease is not blocked by the held lock
	done := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), uuid.New(), func(ctx context.Context) error {
			close(done)
			return nil
		})
	}()
	<-done
	close(release)
}

func TestInMemoryLeaseLocker_CancelledContext(t *testing.T) {
	locker := NewInMemoryLeaseLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := locker.WithLock(ctx, uuid.New(), func(ctx context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
