package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/lease"
)

// StubDocumentStore keeps rendered documents in memory. Used in development
// and tests where no object storage is available.
type StubDocumentStore struct {
	mu      sync.RWMutex
	objects map[string]string
	logger  *zap.Logger
}

// NewStubDocumentStore creates an in-memory document store
func NewStubDocumentStore(logger *zap.Logger) *StubDocumentStore {
	return &StubDocumentStore{
		objects: make(map[string]string),
		logger:  logger,
	}
}

// GenerateSealedDocument renders the contract and keeps it in memory
func (s *StubDocumentStore) GenerateSealedDocument(ctx context.Context, l *lease.Lease, signers []lease.Signer) (string, error) {
	key := fmt.Sprintf("stub/%s/sealed-%d.txt", l.ID, time.Now().UnixNano())

	s.mu.Lock()
	s.objects[key] = renderSealedDocument(l, signers)
	s.mu.Unlock()

	s.logger.Debug("sealed document stored in memory",
		zap.String("lease_id", l.ID.String()),
		zap.String("key", key),
	)
	return key, nil
}

// Delete removes a stored object by key
func (s *StubDocumentStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a stored document body, for tests
func (s *StubDocumentStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.objects[key]
	return body, ok
}
