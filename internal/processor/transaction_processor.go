package processor

import (
	"bank_system/internal/domain"
	"bank_system/internal/registry"
	"bank_system/pkg/validator"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type TransactionRecorder interface {
	RecordTransaction(kind, result string, duration time.Duration)
}

type Request struct {
	ClientID      string
	AccountNumber int
	Kind          domain.TransactionKind
	Amount        domain.Money
}

type Receipt struct {
	ID            uuid.UUID              `json:"id"`
	ClientID      string                 `json:"client_id"`
	AccountNumber int                    `json:"account_number"`
	Kind          domain.TransactionKind `json:"kind"`
	Amount        domain.Money           `json:"amount"`
	Balance       domain.Money           `json:"balance"`
	ProcessedAt   time.Time              `json:"processed_at"`
}

// TransactionProcessor resolves clients and accounts by identifier and
// drives the domain model on their behalf.
type TransactionProcessor struct {
	registry  *registry.Registry
	validator *validator.TransactionValidator
	recorder  TransactionRecorder
	logger    *slog.Logger
}

func NewTransactionProcessor(reg *registry.Registry, recorder TransactionRecorder, logger *slog.Logger) *TransactionProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &TransactionProcessor{
		registry:  reg,
		validator: validator.NewTransactionValidator(),
		recorder:  recorder,
		logger:    logger,
	}
}

func (p *TransactionProcessor) ProcessTransaction(ctx context.Context, req Request) (*Receipt, error) {
	start := time.Now()

	receipt, err := p.process(ctx, req)
	reason := resultOf(err)
	p.recorder.RecordTransaction(string(req.Kind), reason, time.Since(start))

	if err != nil {
		p.logger.WarnContext(ctx, "Transaction rejected",
			slog.String("client_id", req.ClientID),
			slog.Int("account_number", req.AccountNumber),
			slog.String("kind", string(req.Kind)),
			slog.String("amount", req.Amount.String()),
			slog.String("reason", reason),
			slog.String("error", err.Error()))
		return nil, err
	}

	p.logger.InfoContext(ctx, "Transaction completed",
		slog.String("transaction_id", receipt.ID.String()),
		slog.String("client_id", receipt.ClientID),
		slog.Int("account_number", receipt.AccountNumber),
		slog.String("kind", string(receipt.Kind)),
		slog.String("amount", receipt.Amount.String()),
		slog.String("balance", receipt.Balance.String()))
	return receipt, nil
}

func (p *TransactionProcessor) process(ctx context.Context, req Request) (*Receipt, error) {
	if err := p.validator.ValidateTransaction(req.Kind, req.AccountNumber, req.Amount); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	client, err := p.registry.FindClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	account, err := p.registry.FindAccount(ctx, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	tx, err := domain.NewTransaction(req.Kind, req.Amount)
	if err != nil {
		return nil, err
	}

	balance, err := client.PerformTransaction(account, tx)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		ID:            uuid.New(),
		ClientID:      client.ID(),
		AccountNumber: account.Number(),
		Kind:          tx.Kind(),
		Amount:        tx.Amount(),
		Balance:       balance,
		ProcessedAt:   time.Now(),
	}, nil
}

// Statement returns the statement of an account owned by clientID.
func (p *TransactionProcessor) Statement(ctx context.Context, clientID string, accountNumber int) (domain.Statement, error) {
	client, err := p.registry.FindClient(ctx, clientID)
	if err != nil {
		return domain.Statement{}, err
	}

	account, err := p.registry.FindAccount(ctx, accountNumber)
	if err != nil {
		return domain.Statement{}, err
	}

	if !client.Owns(account) {
		return domain.Statement{}, fmt.Errorf("%w: account %d, client %s", domain.ErrAccountNotOwned, accountNumber, clientID)
	}

	return account.Statement(), nil
}

func resultOf(err error) string {
	if errors.Is(err, validator.ErrInvalidAccountNumber) || errors.Is(err, validator.ErrAmountTooLarge) {
		return "invalid_request"
	}
	return domain.Reason(err)
}

type noopRecorder struct{}

func (noopRecorder) RecordTransaction(string, string, time.Duration) {}

