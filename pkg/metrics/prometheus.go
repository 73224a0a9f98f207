package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry            *prometheus.Registry
	transactions        *prometheus.CounterVec
	transactionDuration prometheus.Histogram
	accountBalance      *prometheus.GaugeVec
	clientsRegistered   prometheus.Counter
	accountsOpened      prometheus.Counter
	logger              *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &MetricsCollector{
		registry: registry,
		transactions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "bank_transactions_total",
			Help: "Total number of deposit and withdrawal requests by outcome",
		}, []string{"kind", "result"}),
		transactionDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "bank_transaction_duration_seconds",
			Help:    "Time taken to process a transaction",
			Buckets: prometheus.DefBuckets,
		}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "bank_account_balance",
			Help: "Current account balance",
		}, []string{"account"}),
		clientsRegistered: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bank_clients_registered_total",
			Help: "Total number of registered clients",
		}),
		accountsOpened: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bank_accounts_opened_total",
			Help: "Total number of opened accounts",
		}),
		logger: logger,
	}

	return collector
}

// RecordTransaction counts one request. result is "ok" or a rejection reason.
func (m *MetricsCollector) RecordTransaction(kind, result string, duration time.Duration) {
	m.transactions.WithLabelValues(kind, result).Inc()
	m.transactionDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) UpdateAccountBalance(accountNumber int, balance float64) {
	m.accountBalance.WithLabelValues(strconv.Itoa(accountNumber)).Set(balance)
}

func (m *MetricsCollector) RecordClientRegistered() {
	m.clientsRegistered.Inc()
}

func (m *MetricsCollector) RecordAccountOpened(accountNumber int) {
	m.accountsOpened.Inc()
	m.accountBalance.WithLabelValues(strconv.Itoa(accountNumber)).Set(0)
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	m.mu.Lock()
	m.server = server
	m.mu.Unlock()

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

// Shutdown stops the server started by StartMetricsServer, if any.
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	server := m.server
	m.server = nil
	m.mu.Unlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	m.logger.Info("Metrics server stopped", slog.String("addr", server.Addr))
	return nil
}
