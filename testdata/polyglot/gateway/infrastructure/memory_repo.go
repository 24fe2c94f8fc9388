package infrastructure

import (
	"sync"

	"example.com/gateway/domain"
)

type MemoryReadingRepository struct {
	mu   sync.RWMutex
	data map[string]*domain.Reading
}

func NewMemoryReadingRepository() *MemoryReadingRepository {
	return &MemoryReadingRepository{data: make(map[string]*domain.Reading)}
}

func (r *MemoryReadingRepository) FindByID(id string) (*domain.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reading, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reading, nil
}

func (r *MemoryReadingRepository) Save(reading *domain.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[reading.ID] = reading
	return nil
}
