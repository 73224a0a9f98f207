package api

import (
	"bank_system/internal/domain"
	"bank_system/internal/processor"
	"bank_system/internal/service"
	"bank_system/pkg/validator"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxRequestBodyBytes = 64 << 10

type APIHandler struct {
	clients        *service.ClientService
	processor      *processor.TransactionProcessor
	validator      *validator.ClientValidator
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	clients *service.ClientService,
	processor *processor.TransactionProcessor,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		clients:        clients,
		processor:      processor,
		validator:      validator.NewClientValidator(),
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type RegisterClientRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Address   string `json:"address"`
}

// OpenAccountRequest may be empty; omitted limits fall back to the
// configured defaults.
type OpenAccountRequest struct {
	PerWithdrawalLimit        *domain.Money `json:"per_withdrawal_limit,omitempty"`
	DailyWithdrawalCountLimit *int          `json:"daily_withdrawal_count_limit,omitempty"`
}

type CreateTransactionRequest struct {
	Type   domain.TransactionKind `json:"type"`
	Amount domain.Money           `json:"amount"`
}

type AccountResponse struct {
	Number                    int          `json:"number"`
	Branch                    string       `json:"branch"`
	OwnerID                   string       `json:"owner_id"`
	Balance                   domain.Money `json:"balance"`
	PerWithdrawalLimit        domain.Money `json:"per_withdrawal_limit"`
	DailyWithdrawalCountLimit int          `json:"daily_withdrawal_count_limit"`
	WithdrawalsToday          int          `json:"withdrawals_today"`
	OpenedAt                  time.Time    `json:"opened_at"`
}

type ClientResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	BirthDate string            `json:"birth_date"`
	Address   string            `json:"address"`
	Accounts  []AccountResponse `json:"accounts"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *APIHandler) RegisterClientHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req RegisterClientRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	reg, err := h.validator.ValidateRegistration(req.ID, req.Name, req.BirthDate, req.Address)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	client, err := h.clients.RegisterClient(ctx, reg.ID, reg.Name, reg.BirthDate, reg.Address)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, toClientResponse(client), http.StatusCreated)
}

func (h *APIHandler) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	clients, err := h.clients.ListClients(ctx)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	response := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		response = append(response, toClientResponse(c))
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	client, err := h.clients.GetClient(ctx, validator.NormalizeID(r.PathValue("id")))
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, toClientResponse(client), http.StatusOK)
}

func (h *APIHandler) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req OpenAccountRequest
	if err := h.decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	account, err := h.clients.OpenAccount(ctx, validator.NormalizeID(r.PathValue("id")), service.OpenAccountParams{
		PerWithdrawalLimit:        req.PerWithdrawalLimit,
		DailyWithdrawalCountLimit: req.DailyWithdrawalCountLimit,
	})
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, toAccountResponse(account), http.StatusCreated)
}

func (h *APIHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	accounts, err := h.clients.ListAccounts(ctx, validator.NormalizeID(r.PathValue("id")))
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		response = append(response, toAccountResponse(a))
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	receipt, err := h.processor.ProcessTransaction(ctx, processor.Request{
		ClientID:      validator.NormalizeID(r.PathValue("id")),
		AccountNumber: number,
		Kind:          req.Type,
		Amount:        req.Amount,
	})
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, receipt, http.StatusCreated)
}

func (h *APIHandler) StatementHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}

	statement, err := h.processor.Statement(ctx, validator.NormalizeID(r.PathValue("id")), number)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	h.sendJSON(w, statement, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(v)
}

func (h *APIHandler) accountNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		h.sendError(w, "Account number must be a positive integer", http.StatusBadRequest, "INVALID_ACCOUNT_NUMBER")
		return 0, false
	}
	return number, true
}

func toClientResponse(c *domain.Client) ClientResponse {
	accounts := c.Accounts()
	resp := ClientResponse{
		ID:       c.ID(),
		Name:     c.Name(),
		Address:  c.Address(),
		Accounts: make([]AccountResponse, 0, len(accounts)),
	}
	if !c.BirthDate().IsZero() {
		resp.BirthDate = c.BirthDate().Format(time.DateOnly)
	}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	return resp
}

func toAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Number:                    a.Number(),
		Branch:                    a.Branch(),
		OwnerID:                   a.Owner().ID(),
		Balance:                   a.Balance(),
		PerWithdrawalLimit:        a.PerWithdrawalLimit(),
		DailyWithdrawalCountLimit: a.DailyWithdrawalCountLimit(),
		WithdrawalsToday:          a.WithdrawalsToday(),
		OpenedAt:                  a.OpenedAt(),
	}
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownTransactionKind),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, validator.ErrInvalidAccountNumber),
		errors.Is(err, validator.ErrAmountTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrPerWithdrawalLimitExceeded),
		errors.Is(err, domain.ErrDailyWithdrawalCountExceeded),
		errors.Is(err, domain.ErrDailyWithdrawalAmountExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateClient):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) sendDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", slog.String("error", err.Error()))
		h.sendError(w, "Internal server error", status, "SERVER_ERROR")
		return
	}

	code := strings.ToUpper(domain.Reason(err))
	if status == http.StatusBadRequest && code == "INTERNAL" {
		code = "VALIDATION_ERROR"
	}
	h.sendError(w, err.Error(), status, code)
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/clients", h.RegisterClientHandler)
	mux.HandleFunc("GET /api/v1/clients", h.ListClientsHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}", h.GetClientHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}/accounts", h.ListAccountsHandler)
	mux.HandleFunc("POST /api/v1/clients/{id}/accounts", h.OpenAccountHandler)
	mux.HandleFunc("POST /api/v1/clients/{id}/accounts/{number}/transactions", h.CreateTransactionHandler)
	mux.HandleFunc("GET /api/v1/clients/{id}/accounts/{number}/statement", h.StatementHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
