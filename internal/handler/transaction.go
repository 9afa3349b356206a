package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/storefront-labs/shop-wallet/internal/export"
	"github.com/storefront-labs/shop-wallet/internal/middleware"
	"github.com/storefront-labs/shop-wallet/internal/models"
	"github.com/storefront-labs/shop-wallet/internal/service"
)

const maxProofSize = 10 << 20 // 10 MiB in-memory multipart limit

type createTransactionRequest struct {
	Amount        float64 `json:"amount"`
	Kind          string  `json:"kind"`
	Description   string  `json:"description"`
	ProductID     *int64  `json:"productId"`
	PaymentMethod string  `json:"paymentMethod"`
}

// CreateTransaction handles new deposits and purchases. Accepts multipart
// form data with an optional image proof attachment, or plain JSON.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{Message: "Authentication required!"})
		return
	}

	in, err := h.parseCreateRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	tx, err := h.svc.CreateTransaction(r.Context(), accountID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "Transaction created successfully!",
		Data:    tx,
	})
}

func (h *Handler) parseCreateRequest(r *http.Request) (service.CreateTransactionInput, error) {
	var in service.CreateTransactionInput

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req createTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return in, service.ErrMissingFields
		}
		in = service.CreateTransactionInput{
			Amount:        req.Amount,
			Kind:          models.TransactionKind(req.Kind),
			Description:   req.Description,
			ProductID:     req.ProductID,
			PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		}
		return in, nil
	}

	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		return in, service.ErrMissingFields
	}

	amount, _ := strconv.ParseFloat(r.FormValue("amount"), 64)
	in = service.CreateTransactionInput{
		Amount:        amount,
		Kind:          models.TransactionKind(r.FormValue("kind")),
		Description:   r.FormValue("description"),
		PaymentMethod: models.PaymentMethod(r.FormValue("paymentMethod")),
	}
	if v := r.FormValue("productId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			in.ProductID = &id
		}
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		url, err := h.proofs.Save(file, header.Filename)
		if err != nil {
			return in, err
		}
		in.ProofImageURL = url
	}
	return in, nil
}

// History returns the authenticated account's transactions
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{Message: "Authentication required!"})
		return
	}

	limit, offset := parsePaging(r)
	txs, err := h.svc.ListTransactions(r.Context(), accountID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if txs == nil {
		txs = []models.TransactionDetail{}
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Transaction history fetched successfully!",
		Data:    txs,
	})
}

// Balance returns the authenticated account's derived balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, response{Message: "Authentication required!"})
		return
	}

	balance, err := h.svc.DeriveBalance(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Balance fetched successfully!",
		Data:    map[string]float64{"balance": balance},
	})
}

// AllTransactions returns every account's transactions. Admin only.
func (h *Handler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	txs, err := h.svc.ListAllTransactions(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if txs == nil {
		txs = []models.TransactionDetail{}
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "All transactions fetched successfully!",
		Data:    txs,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus overwrites a transaction's status. Admin only.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	txID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.writeError(w, service.ErrNotFound)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, service.ErrInvalidStatus)
		return
	}

	tx, err := h.svc.UpdateStatus(r.Context(), txID, models.TransactionStatus(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Transaction status updated successfully!",
		Data:    tx,
	})
}

// Export streams a signed XML statement of the full ledger. Admin only.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ExportTransactions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := export.Statement(txs, h.cfg.HMACSecret)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger-statement.xml"`)
	w.Write(data)
}

// Products returns the catalog listing
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	products, err := h.svc.ListProducts(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "Products fetched successfully!",
		Data:    products,
	})
}
