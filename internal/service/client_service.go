package service

import (
	"bank_system/internal/domain"
	"bank_system/internal/registry"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type AccountDefaults struct {
	PerWithdrawalLimit         domain.Money
	DailyWithdrawalCountLimit  int
	DailyWithdrawalAmountLimit domain.Money
}

// OpenAccountParams overrides AccountDefaults for a single account.
// Nil fields keep the default.
type OpenAccountParams struct {
	PerWithdrawalLimit        *domain.Money
	DailyWithdrawalCountLimit *int
}

type RegistrationRecorder interface {
	RecordClientRegistered()
	RecordAccountOpened(accountNumber int)
	UpdateAccountBalance(accountNumber int, balance float64)
}

type ClientService struct {
	registry *registry.Registry
	defaults AccountDefaults
	recorder RegistrationRecorder
	logger   *slog.Logger
}

func NewClientService(
	reg *registry.Registry,
	defaults AccountDefaults,
	recorder RegistrationRecorder,
	logger *slog.Logger,
) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &ClientService{
		registry: reg,
		defaults: defaults,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *ClientService) RegisterClient(ctx context.Context, id, name string, birthDate time.Time, address string) (*domain.Client, error) {
	client, err := s.registry.RegisterClient(ctx, id, name, birthDate, address)
	if err != nil {
		s.logger.WarnContext(ctx, "Client registration rejected",
			slog.String("client_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.recorder.RecordClientRegistered()
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.registry.FindClient(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.registry.Clients(ctx)
}

func (s *ClientService) ListAccounts(ctx context.Context, clientID string) ([]*domain.Account, error) {
	return s.registry.AccountsOf(ctx, clientID)
}

func (s *ClientService) OpenAccount(ctx context.Context, clientID string, params OpenAccountParams) (*domain.Account, error) {
	opts, err := s.accountOptions(params)
	if err != nil {
		return nil, err
	}

	client, err := s.registry.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	account, err := client.OpenAccount(ctx, s.registry, opts...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to open account",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.recorder.RecordAccountOpened(account.Number())
	s.logger.InfoContext(ctx, "Account opened",
		slog.String("client_id", clientID),
		slog.Int("account_number", account.Number()),
		slog.String("per_withdrawal_limit", account.PerWithdrawalLimit().String()),
		slog.Int("daily_withdrawal_count_limit", account.DailyWithdrawalCountLimit()))
	return account, nil
}

func (s *ClientService) accountOptions(params OpenAccountParams) ([]domain.AccountOption, error) {
	perWithdrawal := s.defaults.PerWithdrawalLimit
	if params.PerWithdrawalLimit != nil {
		perWithdrawal = *params.PerWithdrawalLimit
	}
	if !perWithdrawal.IsPositive() {
		return nil, fmt.Errorf("%w: per-withdrawal limit must be positive, got %s", domain.ErrInvalidLimit, perWithdrawal)
	}

	dailyCount := s.defaults.DailyWithdrawalCountLimit
	if params.DailyWithdrawalCountLimit != nil {
		dailyCount = *params.DailyWithdrawalCountLimit
	}
	if dailyCount < 0 {
		return nil, fmt.Errorf("%w: daily withdrawal count must not be negative, got %d", domain.ErrInvalidLimit, dailyCount)
	}

	return []domain.AccountOption{
		domain.WithPerWithdrawalLimit(perWithdrawal),
		domain.WithDailyWithdrawalCountLimit(dailyCount),
		domain.WithDailyWithdrawalAmountLimit(s.defaults.DailyWithdrawalAmountLimit),
		domain.WithBalanceObserver(func(number int, balance domain.Money) {
			s.recorder.UpdateAccountBalance(number, balance.Float64())
		}),
	}, nil
}

type noopRecorder struct{}

func (noopRecorder) RecordClientRegistered() {}

func (noopRecorder) RecordAccountOpened(int) {}

func (noopRecorder) UpdateAccountBalance(int, float64) {}
