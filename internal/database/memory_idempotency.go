package database

import (
	"context"
	"sync"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/models"
)

// MemoryIdempotencyStore reemplaza a Redis cuando REDIS_ENABLED=false
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	result    models.SubmissionResult
	expiresAt time.Time
}

// NewMemoryIdempotencyStore crea un store en memoria con el TTL dado
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get retorna el resultado guardado para la clave si no ha vencido
func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (*models.SubmissionResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	result := entry.result
	return &result, true, nil
}

// Save guarda una copia del resultado
func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, result *models.SubmissionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		result:    *result,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}
