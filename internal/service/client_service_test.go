package service

import (
	"bank_system/internal/domain"
	"bank_system/internal/registry"
	"bank_system/internal/repository/memory"
	"context"
	"errors"
	"testing"
	"time"
)

type recorderStub struct {
	clients  int
	accounts []int
	balances []float64
}

func (r *recorderStub) RecordClientRegistered() { r.clients++ }

func (r *recorderStub) RecordAccountOpened(n int) { r.accounts = append(r.accounts, n) }

func (r *recorderStub) UpdateAccountBalance(_ int, balance float64) {
	r.balances = append(r.balances, balance)
}

func newService(rec RegistrationRecorder) *ClientService {
	reg := registry.New(memory.NewClientRepository(), memory.NewAccountRepository(), nil)
	defaults := AccountDefaults{
		PerWithdrawalLimit:        domain.NewMoney(500),
		DailyWithdrawalCountLimit: 3,
	}
	return NewClientService(reg, defaults, rec, nil)
}

func TestClientService_RegisterAndOpenAccount(t *testing.T) {
	ctx := context.Background()
	rec := &recorderStub{}
	svc := newService(rec)

	if _, err := svc.RegisterClient(ctx, "111", "Ana", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "Rua A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	account, err := svc.OpenAccount(ctx, "111", OpenAccountParams{})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Number() != 1 || !account.PerWithdrawalLimit().Equal(domain.NewMoney(500)) || account.DailyWithdrawalCountLimit() != 3 {
		t.Errorf("unexpected account settings")
	}
	if rec.clients != 1 || len(rec.accounts) != 1 || rec.accounts[0] != 1 {
		t.Errorf("unexpected recorder state %+v", rec)
	}
	client, _ := svc.GetClient(ctx, "111")
	if !client.Owns(account) {
		t.Errorf("expected client to own the new account")
	}
}

func TestClientService_OpenAccountOverrides(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	_, _ = svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")
	limit := domain.NewMoney(800)
	count := 5

	account, err := svc.OpenAccount(ctx, "111", OpenAccountParams{PerWithdrawalLimit: &limit, DailyWithdrawalCountLimit: &count})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !account.PerWithdrawalLimit().Equal(limit) || account.DailyWithdrawalCountLimit() != 5 {
		t.Errorf("expected overrides to apply")
	}
}

func TestClientService_OpenAccountErrors(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	_, _ = svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")
	zero := domain.NewMoney(0)
	negative := -1

	if _, err := svc.OpenAccount(ctx, "999", OpenAccountParams{}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
	if _, err := svc.OpenAccount(ctx, "111", OpenAccountParams{PerWithdrawalLimit: &zero}); !errors.Is(err, domain.ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := svc.OpenAccount(ctx, "111", OpenAccountParams{DailyWithdrawalCountLimit: &negative}); !errors.Is(err, domain.ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestClientService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	rec := &recorderStub{}
	svc := newService(rec)
	_, _ = svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")

	_, err := svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")

	if !errors.Is(err, domain.ErrDuplicateClient) {
		t.Fatalf("expected ErrDuplicateClient, got %v", err)
	}
	if rec.clients != 1 {
		t.Errorf("expected only one recorded registration, got %d", rec.clients)
	}
	clients, _ := svc.ListClients(ctx)
	if len(clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(clients))
	}
}

func TestClientService_ListAccounts(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	_, _ = svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")
	_, _ = svc.RegisterClient(ctx, "222", "Bia", time.Time{}, "Rua B")

	empty, err := svc.ListAccounts(ctx, "222")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no accounts, got %d / %v", len(empty), err)
	}

	first, _ := svc.OpenAccount(ctx, "111", OpenAccountParams{})
	second, _ := svc.OpenAccount(ctx, "111", OpenAccountParams{})
	accounts, err := svc.ListAccounts(ctx, "111")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 || accounts[0] != first || accounts[1] != second {
		t.Errorf("expected both accounts in opening order, got %d", len(accounts))
	}
	if _, err := svc.ListAccounts(ctx, "999"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_OpenedAccountReportsBalances(t *testing.T) {
	ctx := context.Background()
	rec := &recorderStub{}
	svc := newService(rec)
	client, _ := svc.RegisterClient(ctx, "111", "Ana", time.Time{}, "Rua A")
	account, err := svc.OpenAccount(ctx, "111", OpenAccountParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _ = client.PerformTransaction(account, domain.NewDeposit(domain.NewMoney(300)))
	_, _ = client.PerformTransaction(account, domain.NewWithdrawal(domain.NewMoney(1000)))
	_, _ = client.PerformTransaction(account, domain.NewWithdrawal(domain.NewMoney(100)))

	if len(rec.balances) != 2 || rec.balances[0] != 300 || rec.balances[1] != 200 {
		t.Errorf("expected balances [300 200] for committed transactions only, got %v", rec.balances)
	}
}
