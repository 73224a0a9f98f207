package memory

import (
	"bank_system/internal/domain"
	"bank_system/internal/repository"
	"context"
	"fmt"
	"sync"
)

type AccountRepository struct {
	mu          sync.RWMutex
	accounts    map[int]*domain.Account
	clientIndex map[string][]int
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:    make(map[int]*domain.Account),
		clientIndex: make(map[string][]int),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Number()]; exists {
		return fmt.Errorf("%w: account %d", repository.ErrDuplicate, account.Number())
	}

	r.accounts[account.Number()] = account

	if owner := account.Owner(); owner != nil {
		r.clientIndex[owner.ID()] = append(r.clientIndex[owner.ID()], account.Number())
	}

	return nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number int) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[number]
	if !exists {
		return nil, fmt.Errorf("%w: account %d", repository.ErrNotFound, number)
	}
	return account, nil
}

func (r *AccountRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers, exists := r.clientIndex[clientID]
	if !exists {
		return nil, fmt.Errorf("%w: client %s", repository.ErrNotFound, clientID)
	}

	var result []*domain.Account
	for _, number := range numbers {
		if account, exists := r.accounts[number]; exists {
			result = append(result, account)
		}
	}

	return result, nil
}
