package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO wallet.accounts (name, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		account.Name, account.Username, account.Email, account.PasswordHash, account.Role).
		Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByEmail retrieves an account by email
func (r *Repository) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, name, username, email, password_hash, role, created_at
		FROM wallet.accounts
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&account.ID, &account.Name, &account.Username, &account.Email,
			&account.PasswordHash, &account.Role, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// FindAccountByID retrieves an account by id
func (r *Repository) FindAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, name, username, email, password_hash, role, created_at
		FROM wallet.accounts
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&account.ID, &account.Name, &account.Username, &account.Email,
			&account.PasswordHash, &account.Role, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// AccountExists reports whether the username or email is already taken
func (r *Repository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wallet.accounts WHERE username = $1 OR email = $2
		)`
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}
	return exists, nil
}
