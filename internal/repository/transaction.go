package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// CreateTransaction persists a new ledger entry
func (r *Repository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO wallet.transactions
			(reference, account_id, amount, kind, status, description, proof_image_url, product_id, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		tx.Reference, tx.AccountID, tx.Amount, tx.Kind, tx.Status,
		nullString(tx.Description), nullString(tx.ProofImageURL), tx.ProductID, tx.PaymentMethod).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a single transaction
func (r *Repository) FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var description, proofURL sql.NullString
	query := `
		SELECT id, reference, account_id, amount, kind, status, description,
		       proof_image_url, product_id, payment_method, created_at
		FROM wallet.transactions
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&tx.ID, &tx.Reference, &tx.AccountID, &tx.Amount, &tx.Kind, &tx.Status,
			&description, &proofURL, &tx.ProductID, &tx.PaymentMethod, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	tx.Description = description.String
	tx.ProofImageURL = proofURL.String
	return tx, nil
}

// UpdateTransactionStatus overwrites the status of a transaction and
// returns the updated record
func (r *Repository) UpdateTransactionStatus(ctx context.Context, id int64, status models.TransactionStatus) (*models.Transaction, error) {
	tx := &models.Transaction{}
	var description, proofURL sql.NullString
	query := `
		UPDATE wallet.transactions
		SET status = $2
		WHERE id = $1
		RETURNING id, reference, account_id, amount, kind, status, description,
		          proof_image_url, product_id, payment_method, created_at`
	err := r.db.QueryRowContext(ctx, query, id, status).
		Scan(&tx.ID, &tx.Reference, &tx.AccountID, &tx.Amount, &tx.Kind, &tx.Status,
			&description, &proofURL, &tx.ProductID, &tx.PaymentMethod, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	tx.Description = description.String
	tx.ProofImageURL = proofURL.String
	return tx, nil
}

// SumCompleted derives the balance for one account: completed deposits
// minus completed purchases. Pending and rejected entries never count.
func (r *Repository) SumCompleted(ctx context.Context, accountID int64) (float64, error) {
	var balance float64
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'deposit' THEN amount ELSE -amount END), 0)
		FROM wallet.transactions
		WHERE account_id = $1 AND status = 'completed'`
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to derive balance: %w", err)
	}
	return balance, nil
}

// ListByAccount returns one account's transactions, newest first, joined
// with product display fields
func (r *Repository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]models.TransactionDetail, error) {
	query := `
		SELECT t.id, t.reference, t.account_id, t.amount, t.kind, t.status, t.description,
		       t.proof_image_url, t.product_id, t.payment_method, t.created_at,
		       p.name, p.price, p.image_url
		FROM wallet.transactions t
		LEFT JOIN wallet.products p ON p.id = t.product_id
		WHERE t.account_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactionDetails(rows, false)
}

// ListAll returns transactions across every account, newest first, joined
// with product and account display fields. Admin view.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]models.TransactionDetail, error) {
	query := `
		SELECT t.id, t.reference, t.account_id, t.amount, t.kind, t.status, t.description,
		       t.proof_image_url, t.product_id, t.payment_method, t.created_at,
		       p.name, p.price, p.image_url,
		       a.name, a.username, a.email
		FROM wallet.transactions t
		LEFT JOIN wallet.products p ON p.id = t.product_id
		JOIN wallet.accounts a ON a.id = t.account_id
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactionDetails(rows, true)
}

// AccountBalances derives the balance of every account that has at least
// one transaction. Used by the nightly ledger audit.
func (r *Repository) AccountBalances(ctx context.Context) ([]models.AccountBalance, error) {
	query := `
		SELECT a.id, a.email,
		       COALESCE(SUM(CASE
		           WHEN t.status <> 'completed' THEN 0
		           WHEN t.kind = 'deposit' THEN t.amount
		           ELSE -t.amount
		       END), 0)
		FROM wallet.accounts a
		JOIN wallet.transactions t ON t.account_id = a.id
		GROUP BY a.id, a.email
		ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account balances: %w", err)
	}
	defer rows.Close()

	var balances []models.AccountBalance
	for rows.Next() {
		var b models.AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Email, &b.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account balances: %w", err)
	}
	return balances, nil
}

func scanTransactionDetails(rows *sql.Rows, withAccount bool) ([]models.TransactionDetail, error) {
	var details []models.TransactionDetail
	for rows.Next() {
		var d models.TransactionDetail
		var description, proofURL sql.NullString
		var productName, productImage sql.NullString
		var productPrice sql.NullFloat64

		dest := []any{
			&d.ID, &d.Reference, &d.AccountID, &d.Amount, &d.Kind, &d.Status,
			&description, &proofURL, &d.ProductID, &d.PaymentMethod, &d.CreatedAt,
			&productName, &productPrice, &productImage,
		}
		var accountName, accountUsername, accountEmail string
		if withAccount {
			dest = append(dest, &accountName, &accountUsername, &accountEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		d.Description = description.String
		d.ProofImageURL = proofURL.String
		if productName.Valid {
			d.Product = &models.ProductSummary{
				Name:     productName.String,
				Price:    productPrice.Float64,
				ImageURL: productImage.String,
			}
		}
		if withAccount {
			d.Account = &models.AccountSummary{
				Name:     accountName,
				Username: accountUsername,
				Email:    accountEmail,
			}
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return details, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
