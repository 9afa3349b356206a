package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/shop-wallet/internal/config"
	"github.com/storefront-labs/shop-wallet/internal/models"
	"github.com/storefront-labs/shop-wallet/internal/service"
)

// Service is the business-logic surface the handlers call into.
type Service interface {
	Register(ctx context.Context, name, username, email, password, confirmPassword, role string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (token, role string, err error)
	CreateTransaction(ctx context.Context, accountID int64, in service.CreateTransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]models.TransactionDetail, error)
	ListAllTransactions(ctx context.Context, limit, offset int) ([]models.TransactionDetail, error)
	DeriveBalance(ctx context.Context, accountID int64) (float64, error)
	UpdateStatus(ctx context.Context, txID int64, status models.TransactionStatus) (*models.Transaction, error)
	ExportTransactions(ctx context.Context) ([]models.TransactionDetail, error)
	ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error)
}

// ProofStore saves an uploaded proof image and returns its public URL.
type ProofStore interface {
	Save(file io.Reader, originalName string) (string, error)
}

type Handler struct {
	svc    Service
	proofs ProofStore
	cfg    *config.Config
	log    *logrus.Logger
}

func NewHandler(svc Service, proofs ProofStore, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, proofs: proofs, cfg: cfg, log: log}
}

// response is the envelope every JSON endpoint uses. Callers check the
// success flag, not only the HTTP status.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	Role    string `json:"role,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

// writeError maps service errors onto the envelope. Validation errors keep
// their message, anything unexpected is hidden behind a generic one.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, response{Message: "Missing transaction fields! Please try again!"})
	case errors.Is(err, service.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid amount! Please try again!"})
	case errors.Is(err, service.ErrInsufficientBalance):
		writeJSON(w, http.StatusBadRequest, response{Message: "Insufficient balance to complete the payment!"})
	case errors.Is(err, service.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid status!"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{Message: "Transaction not found!"})
	case errors.Is(err, service.ErrAccountExists),
		errors.Is(err, service.ErrUsernameTooShort),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, response{Message: capitalizeFirst(err.Error()) + "!"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, response{Message: "Invalid email or password! Please try again!"})
	default:
		h.log.Errorf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal server error! Please try again!"})
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Health handles the liveness check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func parsePaging(r *http.Request) (limit, offset int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	return limit, (page - 1) * limit
}
