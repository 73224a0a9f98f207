package repository

import (
	"bank_system/internal/domain"
	"context"
	"errors"
)

type ClientRepository interface {
	Save(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetAll(ctx context.Context) ([]*domain.Client, error)
}

type AccountRepository interface {
	Save(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, number int) (*domain.Account, error)
	GetByClientID(ctx context.Context, clientID string) ([]*domain.Account, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
