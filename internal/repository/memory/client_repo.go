package memory

import (
	"bank_system/internal/domain"
	"bank_system/internal/repository"
	"context"
	"fmt"
	"sync"
)

type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
	order   []string
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// Save inserts client unless its ID is already taken; the check and the
// insert happen under one lock.
func (r *ClientRepository) Save(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[client.ID()]; exists {
		return fmt.Errorf("%w: client %s", repository.ErrDuplicate, client.ID())
	}

	r.clients[client.ID()] = client
	r.order = append(r.order, client.ID())

	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[id]
	if !exists {
		return nil, fmt.Errorf("%w: client %s", repository.ErrNotFound, id)
	}
	return client, nil
}

// GetAll returns clients in registration order.
func (r *ClientRepository) GetAll(ctx context.Context) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Client, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.clients[id])
	}

	return result, nil
}
