package domain

import (
	"fmt"
)

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

func (k TransactionKind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is a single deposit or withdrawal request. Apply validates it
// against the account's current state and, on success, mutates the balance
// and appends to the history. Apply expects the caller to hold the account
// exclusively; use Account.ApplyTransaction or Client.PerformTransaction.
type Transaction interface {
	Kind() TransactionKind
	Amount() Money
	Apply(account *Account) error
}

var (
	_ Transaction = Deposit{}
	_ Transaction = Withdrawal{}
)

func NewTransaction(kind TransactionKind, amount Money) (Transaction, error) {
	switch kind {
	case KindDeposit:
		return NewDeposit(amount), nil
	case KindWithdrawal:
		return NewWithdrawal(amount), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransactionKind, kind)
	}
}

type Deposit struct {
	amount Money
}

func NewDeposit(amount Money) Deposit {
	return Deposit{amount: amount}
}

func (d Deposit) Kind() TransactionKind { return KindDeposit }

func (d Deposit) Amount() Money { return d.amount }

func (d Deposit) Apply(account *Account) error {
	if !d.amount.IsPositive() {
		return account.reject(KindDeposit, d.amount, ErrInvalidAmount)
	}

	account.record(KindDeposit, d.amount, account.balance.Add(d.amount), account.now())
	return nil
}

type Withdrawal struct {
	amount Money
}

func NewWithdrawal(amount Money) Withdrawal {
	return Withdrawal{amount: amount}
}

func (w Withdrawal) Kind() TransactionKind { return KindWithdrawal }

func (w Withdrawal) Amount() Money { return w.amount }

// Apply checks, in order: amount, today's withdrawal count, the single
// withdrawal cap, the optional daily amount cap and finally the balance.
// The first failing check is returned.
func (w Withdrawal) Apply(account *Account) error {
	if !w.amount.IsPositive() {
		return account.reject(KindWithdrawal, w.amount, ErrInvalidAmount)
	}

	now := account.now()
	if account.history.CountOn(KindWithdrawal, now) >= account.dailyWithdrawalCountLimit {
		return account.reject(KindWithdrawal, w.amount, ErrDailyWithdrawalCountExceeded)
	}

	if w.amount.GreaterThan(account.perWithdrawalLimit) {
		return account.reject(KindWithdrawal, w.amount, ErrPerWithdrawalLimitExceeded)
	}

	if limit := account.dailyWithdrawalAmountLimit; limit.IsPositive() {
		if account.history.SumOn(KindWithdrawal, now).Add(w.amount).GreaterThan(limit) {
			return account.reject(KindWithdrawal, w.amount, ErrDailyWithdrawalAmountExceeded)
		}
	}

	if w.amount.GreaterThan(account.balance) {
		return account.reject(KindWithdrawal, w.amount, ErrInsufficientBalance)
	}

	account.record(KindWithdrawal, w.amount, account.balance.Sub(w.amount), now)
	return nil
}
