package validator

import (
	"bank_system/internal/domain"
	"errors"
	"fmt"
)

var (
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum")
)

type TransactionValidator struct {
	maxAmount domain.Money
}

func NewTransactionValidator() *TransactionValidator {
	return &TransactionValidator{
		maxAmount: domain.NewMoney(1_000_000),
	}
}

// ValidateTransaction checks the shape of a request before any account is
// touched. Business limits are the account's concern.
func (v *TransactionValidator) ValidateTransaction(kind domain.TransactionKind, accountNumber int, amount domain.Money) error {
	var errs []error

	if !kind.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", domain.ErrUnknownTransactionKind, kind))
	}

	if accountNumber <= 0 {
		errs = append(errs, ErrInvalidAccountNumber)
	}

	if err := v.ValidateAmount(amount); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (v *TransactionValidator) ValidateAmount(amount domain.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	if amount.GreaterThan(v.maxAmount) {
		return fmt.Errorf("%w: %s", ErrAmountTooLarge, v.maxAmount)
	}

	return nil
}
