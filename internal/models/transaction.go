package models

import "time"

// TransactionKind classifies the direction of a transaction.
type TransactionKind string

// TransactionStatus is the verification state of a transaction.
type TransactionStatus string

// PaymentMethod records how a transaction was paid for.
type PaymentMethod string

const (
	KindDeposit  TransactionKind = "deposit"
	KindPurchase TransactionKind = "purchase"

	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusRejected  TransactionStatus = "rejected"

	MethodQR      PaymentMethod = "qr"
	MethodBalance PaymentMethod = "balance"
)

// Valid reports whether the kind is one of the known transaction kinds.
func (k TransactionKind) Valid() bool {
	return k == KindDeposit || k == KindPurchase
}

// Valid reports whether the status is one of the known transaction statuses.
func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusRejected
}

// Valid reports whether the payment method is one of the known methods.
func (m PaymentMethod) Valid() bool {
	return m == MethodQR || m == MethodBalance
}

// Transaction represents a single ledger entry against an account.
// Kind and CreatedAt are immutable after creation; only Status is ever
// updated. Balance is never stored, it is derived from completed entries.
type Transaction struct {
	ID            int64             `json:"id"`
	Reference     string            `json:"reference"`
	AccountID     int64             `json:"account_id"`
	Amount        float64           `json:"amount"`
	Kind          TransactionKind   `json:"kind"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description,omitempty"`
	ProofImageURL string            `json:"proof_image_url,omitempty"`
	ProductID     *int64            `json:"product_id,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ProductSummary carries the product display fields joined into listings.
type ProductSummary struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

// AccountSummary carries the account display fields joined into the
// admin listing.
type AccountSummary struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TransactionDetail is a Transaction enriched with display data for
// presentation. Product is set when the transaction references a product,
// Account only in admin listings.
type TransactionDetail struct {
	Transaction
	Product *ProductSummary `json:"product,omitempty"`
	Account *AccountSummary `json:"account,omitempty"`
}

// AccountBalance pairs an account with its derived balance. Used by the
// nightly ledger audit.
type AccountBalance struct {
	AccountID int64   `json:"account_id"`
	Email     string  `json:"email"`
	Balance   float64 `json:"balance"`
}
