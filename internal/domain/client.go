package domain

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// AccountRegistrar hands out account numbers and indexes opened accounts.
type AccountRegistrar interface {
	NextAccountNumber(ctx context.Context) int
	AddAccount(ctx context.Context, account *Account) error
}

// Client is a natural person who owns accounts. Identity fields are fixed
// at creation; only the set of owned accounts grows.
type Client struct {
	id        string
	name      string
	birthDate time.Time
	address   string

	mu       sync.RWMutex
	accounts []*Account
}

func NewClient(address, id, name string, birthDate time.Time) *Client {
	return &Client{
		id:        id,
		name:      name,
		birthDate: birthDate,
		address:   address,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Name() string { return c.name }

func (c *Client) BirthDate() time.Time { return c.birthDate }

func (c *Client) Address() string { return c.address }

// OpenAccount creates an account owned by c under a fresh number from reg.
// The account joins the owned set before reg can hand it out, and leaves it
// again if reg refuses it.
func (c *Client) OpenAccount(ctx context.Context, reg AccountRegistrar, opts ...AccountOption) (*Account, error) {
	account, err := NewAccount(c, reg.NextAccountNumber(ctx), opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.accounts = append(c.accounts, account)
	c.mu.Unlock()

	if err := reg.AddAccount(ctx, account); err != nil {
		c.mu.Lock()
		c.accounts = slices.DeleteFunc(c.accounts, func(a *Account) bool { return a == account })
		c.mu.Unlock()
		return nil, fmt.Errorf("open account for client %s: %w", c.id, err)
	}

	return account, nil
}

func (c *Client) Accounts() []*Account {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.accounts)
}

func (c *Client) Owns(account *Account) bool {
	if account == nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.accounts, account)
}

func (c *Client) Account(number int) (*Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, account := range c.accounts {
		if account.Number() == number {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: account %d for client %s", ErrAccountNotFound, number, c.id)
}

// PerformTransaction is the entry point for moving money: it refuses
// accounts c does not own and otherwise defers to the account. On success it
// returns the balance tx left behind.
func (c *Client) PerformTransaction(account *Account, tx Transaction) (Money, error) {
	if !c.Owns(account) {
		if account == nil {
			return Money{}, fmt.Errorf("%w: client %s", ErrAccountNotOwned, c.id)
		}
		return Money{}, fmt.Errorf("%w: account %d, client %s", ErrAccountNotOwned, account.Number(), c.id)
	}
	return account.ApplyTransaction(tx)
}
