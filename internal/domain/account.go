package domain

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	BranchCode                       = "0001"
	DefaultDailyWithdrawalCountLimit = 3
)

var DefaultPerWithdrawalLimit = NewMoney(500)

type AccountOption func(*Account)

func WithPerWithdrawalLimit(limit Money) AccountOption {
	return func(a *Account) {
		a.perWithdrawalLimit = limit
	}
}

func WithDailyWithdrawalCountLimit(limit int) AccountOption {
	return func(a *Account) {
		a.dailyWithdrawalCountLimit = limit
	}
}

// WithDailyWithdrawalAmountLimit caps the total withdrawn per calendar day.
// Zero disables the cap.
func WithDailyWithdrawalAmountLimit(limit Money) AccountOption {
	return func(a *Account) {
		a.dailyWithdrawalAmountLimit = limit
	}
}

// WithBalanceObserver registers fn to receive the balance after every
// successful transaction. fn runs while the account is locked, so calls
// arrive in commit order; it must not call back into the account.
func WithBalanceObserver(fn func(number int, balance Money)) AccountOption {
	return func(a *Account) {
		a.observe = fn
	}
}

func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

// Account holds a balance that only changes through ApplyTransaction.
// The balance never goes below zero.
type Account struct {
	mu                         sync.Mutex
	number                     int
	owner                      *Client
	balance                    Money
	perWithdrawalLimit         Money
	dailyWithdrawalCountLimit  int
	dailyWithdrawalAmountLimit Money
	history                    *HistoryLog
	openedAt                   time.Time
	now                        func() time.Time
	observe                    func(number int, balance Money)
}

// NewAccount applies opts over the default limits and rejects a
// non-positive per-withdrawal limit or a negative daily limit with
// ErrInvalidLimit.
func NewAccount(owner *Client, number int, opts ...AccountOption) (*Account, error) {
	a := &Account{
		number:                    number,
		owner:                     owner,
		perWithdrawalLimit:        DefaultPerWithdrawalLimit,
		dailyWithdrawalCountLimit: DefaultDailyWithdrawalCountLimit,
		history:                   NewHistoryLog(),
		now:                       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validateLimits(); err != nil {
		return nil, err
	}
	a.openedAt = a.now()
	return a, nil
}

func (a *Account) validateLimits() error {
	switch {
	case !a.perWithdrawalLimit.IsPositive():
		return fmt.Errorf("%w: per-withdrawal limit must be positive, got %s", ErrInvalidLimit, a.perWithdrawalLimit)
	case a.dailyWithdrawalCountLimit < 0:
		return fmt.Errorf("%w: daily withdrawal count must not be negative, got %d", ErrInvalidLimit, a.dailyWithdrawalCountLimit)
	case a.dailyWithdrawalAmountLimit.IsNegative():
		return fmt.Errorf("%w: daily withdrawal amount must not be negative, got %s", ErrInvalidLimit, a.dailyWithdrawalAmountLimit)
	}
	return nil
}

// ApplyTransaction is the only mutation path for balance and history.
// Concurrent calls on the same account are serialized. The returned balance
// is the one left by tx, read before any other transaction can run.
func (a *Account) ApplyTransaction(tx Transaction) (Money, error) {
	if tx == nil {
		return Money{}, ErrUnknownTransactionKind
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := tx.Apply(a); err != nil {
		return Money{}, err
	}
	if a.observe != nil {
		a.observe(a.number, a.balance)
	}
	return a.balance, nil
}

func (a *Account) Number() int { return a.number }

func (a *Account) Branch() string { return BranchCode }

func (a *Account) Owner() *Client { return a.owner }

func (a *Account) OpenedAt() time.Time { return a.openedAt }

func (a *Account) PerWithdrawalLimit() Money { return a.perWithdrawalLimit }

func (a *Account) DailyWithdrawalCountLimit() int { return a.dailyWithdrawalCountLimit }

func (a *Account) DailyWithdrawalAmountLimit() Money { return a.dailyWithdrawalAmountLimit }

func (a *Account) Balance() Money {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) WithdrawalsToday() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.CountOn(KindWithdrawal, a.now())
}

func (a *Account) History() iter.Seq[HistoryEntry] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.All()
}

func (a *Account) Statement() Statement {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Statement{
		AccountNumber: a.number,
		Branch:        BranchCode,
		Entries:       slices.Collect(a.history.All()),
		Balance:       a.balance,
		GeneratedAt:   a.now(),
	}
	if s.Entries == nil {
		s.Entries = []HistoryEntry{}
	}
	if a.owner != nil {
		s.OwnerID = a.owner.ID()
	}
	return s
}

func (a *Account) record(kind TransactionKind, amount, newBalance Money, at time.Time) {
	a.balance = newBalance
	a.history.Append(HistoryEntry{
		ID:        uuid.New(),
		Kind:      kind,
		Amount:    amount,
		Timestamp: at,
	})
}

func (a *Account) reject(kind TransactionKind, amount Money, err error) error {
	return &TransactionError{
		Kind:          kind,
		AccountNumber: a.number,
		Amount:        amount,
		Err:           err,
	}
}

type Statement struct {
	AccountNumber int            `json:"account_number"`
	Branch        string         `json:"branch"`
	OwnerID       string         `json:"owner_id"`
	Entries       []HistoryEntry `json:"entries"`
	Balance       Money          `json:"balance"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// Replay folds the entries into the balance they imply.
func (s Statement) Replay() Money {
	var balance Money
	for _, entry := range s.Entries {
		switch entry.Kind {
		case KindDeposit:
			balance = balance.Add(entry.Amount)
		case KindWithdrawal:
			balance = balance.Sub(entry.Amount)
		}
	}
	return balance
}
