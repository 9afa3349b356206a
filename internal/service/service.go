package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-labs/shop-wallet/internal/config"
	"github.com/storefront-labs/shop-wallet/internal/models"
)

// Validation and lookup failures surfaced to callers. Anything else coming
// out of the store is treated as a storage failure and not exposed.
var (
	ErrMissingFields       = errors.New("missing transaction fields")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrNotFound            = errors.New("not found")

	ErrAccountExists      = errors.New("username or email already exists")
	ErrUsernameTooShort   = errors.New("username must be at least 6 characters long")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordMismatch   = errors.New("password and confirm password do not match")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountStore defines the account directory operations the service
// depends on.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	FindAccountByID(ctx context.Context, id int64) (*models.Account, error)
	AccountExists(ctx context.Context, username, email string) (bool, error)
}

// TransactionStore defines the ledger persistence operations the service
// depends on.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status models.TransactionStatus) (*models.Transaction, error)
	SumCompleted(ctx context.Context, accountID int64) (float64, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]models.TransactionDetail, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.TransactionDetail, error)
	AccountBalances(ctx context.Context) ([]models.AccountBalance, error)
}

// ProductStore resolves catalog reference data.
type ProductStore interface {
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error)
}

// Store is the full persistence surface of the service.
type Store interface {
	AccountStore
	TransactionStore
	ProductStore
}

// Notifier sends best-effort mail about ledger events.
type Notifier interface {
	SendStatusNotification(to, name string, tx *models.Transaction, balance float64) error
}

// Service handles business logic
type Service struct {
	store    Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService initializes a new service. notifier may be nil when mail is
// not configured.
func NewService(store Store, log *logrus.Logger, cfg *config.Config, notifier Notifier) *Service {
	return &Service{
		store:    store,
		log:      log,
		config:   cfg,
		notifier: notifier,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// lockAccount serializes mutating ledger operations for one account. The
// balance check in CreateTransaction and the insert it guards must not
// interleave with another mutation on the same account.
func (s *Service) lockAccount(accountID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Register creates a new account with a hashed password
func (s *Service) Register(ctx context.Context, name, username, email, password, confirmPassword, role string) (*models.Account, error) {
	if len(username) < 6 {
		return nil, ErrUsernameTooShort
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	taken, err := s.store.AccountExists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrAccountExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if role != models.RoleAdmin {
		role = models.RoleUser
	}
	account := &models.Account{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Infof("Account registered: %s", account.Email)
	return account, nil
}

// Login authenticates an account and returns a JWT token with the role claim
func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	account, err := s.store.FindAccountByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", account.ID),
		"role": account.Role,
		"exp":  jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Account logged in: %s", account.Email)
	return tokenString, account.Role, nil
}

// ListProducts returns the product catalog for the storefront
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	return s.store.ListProducts(ctx, clampLimit(limit), offset)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
