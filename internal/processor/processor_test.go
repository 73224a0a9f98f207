package processor

import (
	"bank_system/internal/domain"
	"bank_system/internal/registry"
	"bank_system/internal/repository/memory"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordedTx struct {
	kind, result string
}

type recorderStub struct {
	mu           sync.Mutex
	transactions []recordedTx
}

func (r *recorderStub) RecordTransaction(kind, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, recordedTx{kind, result})
}

type testEnv struct {
	registry  *registry.Registry
	processor *TransactionProcessor
	recorder  *recorderStub
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	reg := registry.New(memory.NewClientRepository(), memory.NewAccountRepository(), logger)
	rec := &recorderStub{}
	return &testEnv{
		registry:  reg,
		processor: NewTransactionProcessor(reg, rec, logger),
		recorder:  rec,
	}
}

func mustOpenAccount(t *testing.T, env *testEnv, clientID string) *domain.Account {
	t.Helper()
	ctx := context.Background()
	client, err := env.registry.FindClient(ctx, clientID)
	if err != nil {
		client, err = env.registry.RegisterClient(ctx, clientID, "Client "+clientID, time.Time{}, "Rua A")
		if err != nil {
			t.Fatalf("register client failed: %v", err)
		}
	}
	account, err := client.OpenAccount(ctx, env.registry)
	if err != nil {
		t.Fatalf("open account failed: %v", err)
	}
	return account
}

func TestTransactionProcessor_ProcessTransaction_Deposit(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	account := mustOpenAccount(t, env, "111")

	receipt, err := env.processor.ProcessTransaction(ctx, Request{
		ClientID:      "111",
		AccountNumber: account.Number(),
		Kind:          domain.KindDeposit,
		Amount:        domain.NewMoney(1000),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !receipt.Balance.Equal(domain.NewMoney(1000)) || receipt.Kind != domain.KindDeposit || receipt.ClientID != "111" {
		t.Errorf("unexpected receipt %+v", receipt)
	}
	if !account.Balance().Equal(domain.NewMoney(1000)) {
		t.Errorf("expected 1000, got %s", account.Balance())
	}
	if len(env.recorder.transactions) != 1 || env.recorder.transactions[0] != (recordedTx{"deposit", "ok"}) {
		t.Errorf("unexpected recorded metrics %+v", env.recorder.transactions)
	}
}

func TestTransactionProcessor_ProcessTransaction_WithdrawalInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	account := mustOpenAccount(t, env, "111")
	_, _ = env.processor.ProcessTransaction(ctx, Request{ClientID: "111", AccountNumber: account.Number(), Kind: domain.KindDeposit, Amount: domain.NewMoney(100)})

	_, err := env.processor.ProcessTransaction(ctx, Request{
		ClientID:      "111",
		AccountNumber: account.Number(),
		Kind:          domain.KindWithdrawal,
		Amount:        domain.NewMoney(200),
	})

	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if !account.Balance().Equal(domain.NewMoney(100)) {
		t.Errorf("expected 100, got %s", account.Balance())
	}
	last := env.recorder.transactions[len(env.recorder.transactions)-1]
	if last != (recordedTx{"withdrawal", "insufficient_balance"}) {
		t.Errorf("unexpected recorded metrics %+v", last)
	}
}

func TestTransactionProcessor_ProcessTransaction_AccountNotOwned(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	anaAccount := mustOpenAccount(t, env, "111")
	mustOpenAccount(t, env, "222")
	_, _ = env.processor.ProcessTransaction(ctx, Request{ClientID: "111", AccountNumber: anaAccount.Number(), Kind: domain.KindDeposit, Amount: domain.NewMoney(300)})

	_, err := env.processor.ProcessTransaction(ctx, Request{
		ClientID:      "222",
		AccountNumber: anaAccount.Number(),
		Kind:          domain.KindWithdrawal,
		Amount:        domain.NewMoney(50),
	})

	if !errors.Is(err, domain.ErrAccountNotOwned) {
		t.Fatalf("expected ErrAccountNotOwned, got %v", err)
	}
	if !anaAccount.Balance().Equal(domain.NewMoney(300)) {
		t.Errorf("expected 300, got %s", anaAccount.Balance())
	}
}

func TestTransactionProcessor_ProcessTransaction_LookupAndValidation(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	account := mustOpenAccount(t, env, "111")

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"unknown client", Request{ClientID: "999", AccountNumber: account.Number(), Kind: domain.KindDeposit, Amount: domain.NewMoney(1)}, domain.ErrClientNotFound},
		{"unknown account", Request{ClientID: "111", AccountNumber: 42, Kind: domain.KindDeposit, Amount: domain.NewMoney(1)}, domain.ErrAccountNotFound},
		{"zero amount", Request{ClientID: "111", AccountNumber: account.Number(), Kind: domain.KindDeposit, Amount: domain.NewMoney(0)}, domain.ErrInvalidAmount},
		{"unknown kind", Request{ClientID: "111", AccountNumber: account.Number(), Kind: "transfer", Amount: domain.NewMoney(1)}, domain.ErrUnknownTransactionKind},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := env.processor.ProcessTransaction(ctx, c.req); !errors.Is(err, c.want) {
				t.Errorf("expected %v, got %v", c.want, err)
			}
		})
	}
	if !account.Balance().IsZero() {
		t.Errorf("expected balance untouched, got %s", account.Balance())
	}
}

func TestTransactionProcessor_Statement(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	account := mustOpenAccount(t, env, "111")
	mustOpenAccount(t, env, "222")
	for _, req := range []Request{
		{ClientID: "111", AccountNumber: account.Number(), Kind: domain.KindDeposit, Amount: domain.NewMoney(1000)},
		{ClientID: "111", AccountNumber: account.Number(), Kind: domain.KindWithdrawal, Amount: domain.NewMoney(500)},
	} {
		if _, err := env.processor.ProcessTransaction(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	st, err := env.processor.Statement(ctx, "111", account.Number())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Entries) != 2 || st.Entries[0].Kind != domain.KindDeposit || st.Entries[1].Kind != domain.KindWithdrawal {
		t.Errorf("unexpected entries %+v", st.Entries)
	}
	if !st.Balance.Equal(domain.NewMoney(500)) || !st.Replay().Equal(st.Balance) {
		t.Errorf("unexpected balance %s", st.Balance)
	}
	if _, err := env.processor.Statement(ctx, "222", account.Number()); !errors.Is(err, domain.ErrAccountNotOwned) {
		t.Errorf("expected ErrAccountNotOwned, got %v", err)
	}
}

func TestTransactionProcessor_ReceiptBalanceIsOwnResult(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	account := mustOpenAccount(t, env, "111")

	const n = 50
	balances := make(chan domain.Money, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := env.processor.ProcessTransaction(ctx, Request{
				ClientID:      "111",
				AccountNumber: account.Number(),
				Kind:          domain.KindDeposit,
				Amount:        domain.NewMoney(1),
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			balances <- receipt.Balance
		}()
	}
	wg.Wait()
	close(balances)

	seen := make(map[int64]bool)
	for b := range balances {
		if seen[b.Cents()] {
			t.Fatalf("two receipts report balance %s", b)
		}
		seen[b.Cents()] = true
	}
	for i := int64(1); i <= n; i++ {
		if !seen[i*100] {
			t.Errorf("expected a receipt with balance %d", i)
		}
	}
}
