// Package registry is the process-wide directory of clients and accounts.
// It is created once at startup and passed to whatever needs it.
package registry

import (
	"bank_system/internal/domain"
	"bank_system/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var _ domain.AccountRegistrar = (*Registry)(nil)

type Registry struct {
	clients           repository.ClientRepository
	accounts          repository.AccountRepository
	lastAccountNumber atomic.Int64
	logger            *slog.Logger
}

func New(clients repository.ClientRepository, accounts repository.AccountRepository, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		clients:  clients,
		accounts: accounts,
		logger:   logger,
	}
}

func (r *Registry) RegisterClient(ctx context.Context, id, name string, birthDate time.Time, address string) (*domain.Client, error) {
	client := domain.NewClient(address, id, name, birthDate)

	if err := r.clients.Save(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateClient, id)
		}
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	r.logger.InfoContext(ctx, "Client registered",
		slog.String("client_id", id))
	return client, nil
}

func (r *Registry) FindClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := r.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (r *Registry) Clients(ctx context.Context) ([]*domain.Client, error) {
	return r.clients.GetAll(ctx)
}

func (r *Registry) FindAccount(ctx context.Context, number int) (*domain.Account, error) {
	account, err := r.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, number)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// AccountsOf returns the accounts indexed under clientID in opening order.
func (r *Registry) AccountsOf(ctx context.Context, clientID string) ([]*domain.Account, error) {
	if _, err := r.FindClient(ctx, clientID); err != nil {
		return nil, err
	}

	accounts, err := r.accounts.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []*domain.Account{}, nil
		}
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// NextAccountNumber is strictly increasing for the life of the registry,
// starting at 1. Numbers are never reused, even if AddAccount later fails.
func (r *Registry) NextAccountNumber(ctx context.Context) int {
	return int(r.lastAccountNumber.Add(1))
}

func (r *Registry) AddAccount(ctx context.Context, account *domain.Account) error {
	if err := r.accounts.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	attrs := []any{slog.Int("account_number", account.Number())}
	if owner := account.Owner(); owner != nil {
		attrs = append(attrs, slog.String("client_id", owner.ID()))
	}
	r.logger.InfoContext(ctx, "Account registered", attrs...)
	return nil
}
