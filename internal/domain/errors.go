package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount                 = errors.New("invalid amount")
	ErrInsufficientBalance           = errors.New("insufficient balance")
	ErrPerWithdrawalLimitExceeded    = errors.New("per-withdrawal limit exceeded")
	ErrDailyWithdrawalCountExceeded  = errors.New("daily withdrawal count exceeded")
	ErrDailyWithdrawalAmountExceeded = errors.New("daily withdrawal amount exceeded")
	ErrUnknownTransactionKind        = errors.New("unknown transaction kind")
	ErrInvalidLimit                  = errors.New("invalid account limit")
	ErrAccountNotOwned               = errors.New("account not owned by client")
	ErrDuplicateClient               = errors.New("client already registered")
	ErrClientNotFound                = errors.New("client not found")
	ErrAccountNotFound               = errors.New("account not found")
)

// TransactionError reports a rejected deposit or withdrawal together with
// the account it was evaluated against. It unwraps to one of the sentinels above.
type TransactionError struct {
	Kind          TransactionKind
	AccountNumber int
	Amount        Money
	Err           error
}

func (e *TransactionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s of %s on account %d: %v", e.Kind, e.Amount, e.AccountNumber, e.Err)
}

func (e *TransactionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var reasons = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrPerWithdrawalLimitExceeded, "per_withdrawal_limit_exceeded"},
	{ErrDailyWithdrawalCountExceeded, "daily_withdrawal_count_exceeded"},
	{ErrDailyWithdrawalAmountExceeded, "daily_withdrawal_amount_exceeded"},
	{ErrUnknownTransactionKind, "unknown_transaction_kind"},
	{ErrInvalidLimit, "invalid_limit"},
	{ErrAccountNotOwned, "account_not_owned"},
	{ErrDuplicateClient, "duplicate_client"},
	{ErrClientNotFound, "client_not_found"},
	{ErrAccountNotFound, "account_not_found"},
}

// Reason maps err to a stable snake_case code. Nil maps to "ok" and
// anything outside the taxonomy to "internal".
func Reason(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}
	return "internal"
}
