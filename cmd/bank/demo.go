package main

import (
	"bank_system/internal/config"
	"bank_system/internal/domain"
	"bank_system/internal/processor"
	"bank_system/internal/registry"
	"bank_system/internal/repository/memory"
	"bank_system/internal/service"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func demoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Register a client, move money through one account and print its statement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
			return runDemo(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		},
	}
}

func runDemo(ctx context.Context, cfg config.Config, logger *slog.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reg := registry.New(memory.NewClientRepository(), memory.NewAccountRepository(), logger)
	clients := service.NewClientService(reg, accountDefaults(cfg), nil, logger)
	txProcessor := processor.NewTransactionProcessor(reg, nil, logger)

	client, err := clients.RegisterClient(ctx, "111", "Ana", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "Rua A, 1 - Centro - Recife/PE")
	if err != nil {
		return err
	}

	account, err := clients.OpenAccount(ctx, client.ID(), service.OpenAccountParams{})
	if err != nil {
		return err
	}

	steps := []struct {
		kind   domain.TransactionKind
		amount domain.Money
	}{
		{domain.KindDeposit, domain.NewMoney(1000)},
		{domain.KindWithdrawal, domain.NewMoney(500)},
		{domain.KindWithdrawal, domain.NewMoney(600)},
	}
	for _, step := range steps {
		_, err := txProcessor.ProcessTransaction(ctx, processor.Request{
			ClientID:      client.ID(),
			AccountNumber: account.Number(),
			Kind:          step.kind,
			Amount:        step.amount,
		})
		if err != nil {
			fmt.Fprintf(out, "%s %s rejected: %s\n", step.kind, step.amount, domain.Reason(err))
			continue
		}
		fmt.Fprintf(out, "%s %s ok, balance %s\n", step.kind, step.amount, account.Balance())
	}

	statement, err := txProcessor.Statement(ctx, client.ID(), account.Number())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(statement)
}
