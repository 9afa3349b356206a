package service_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// memStore is an in-memory Store used to exercise the ledger semantics
// without a database.
type memStore struct {
	mu       sync.Mutex
	accounts map[int64]*models.Account
	products map[int64]*models.Product
	txs      []*models.Transaction
	nextAcct int64
	nextTx   int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*models.Account),
		products: make(map[int64]*models.Product),
	}
}

func (m *memStore) CreateAccount(_ context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAcct++
	account.ID = m.nextAcct
	account.CreatedAt = time.Now()
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *memStore) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) FindAccountByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) AccountExists(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTx++
	tx.ID = m.nextTx
	tx.CreatedAt = time.Now()
	cp := *tx
	m.txs = append(m.txs, &cp)
	return nil
}

func (m *memStore) FindTransactionByID(_ context.Context, id int64) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.txs {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) UpdateTransactionStatus(_ context.Context, id int64, status models.TransactionStatus) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.txs {
		if tx.ID == id {
			tx.Status = status
			cp := *tx
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) SumCompleted(_ context.Context, accountID int64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumLocked(accountID), nil
}

func (m *memStore) sumLocked(accountID int64) float64 {
	var balance float64
	for _, tx := range m.txs {
		if tx.AccountID != accountID || tx.Status != models.StatusCompleted {
			continue
		}
		if tx.Kind == models.KindDeposit {
			balance += tx.Amount
		} else {
			balance -= tx.Amount
		}
	}
	return balance
}

func (m *memStore) ListByAccount(_ context.Context, accountID int64, limit, offset int) ([]models.TransactionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var details []models.TransactionDetail
	for _, tx := range m.txs {
		if tx.AccountID != accountID {
			continue
		}
		details = append(details, models.TransactionDetail{Transaction: *tx})
	}
	return pageNewestFirst(details, limit, offset), nil
}

func (m *memStore) ListAll(_ context.Context, limit, offset int) ([]models.TransactionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var details []models.TransactionDetail
	for _, tx := range m.txs {
		d := models.TransactionDetail{Transaction: *tx}
		if a, ok := m.accounts[tx.AccountID]; ok {
			d.Account = &models.AccountSummary{Name: a.Name, Username: a.Username, Email: a.Email}
		}
		details = append(details, d)
	}
	return pageNewestFirst(details, limit, offset), nil
}

func (m *memStore) AccountBalances(_ context.Context) ([]models.AccountBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]bool)
	var balances []models.AccountBalance
	for _, tx := range m.txs {
		if seen[tx.AccountID] {
			continue
		}
		seen[tx.AccountID] = true
		b := models.AccountBalance{AccountID: tx.AccountID, Balance: m.sumLocked(tx.AccountID)}
		if a, ok := m.accounts[tx.AccountID]; ok {
			b.Email = a.Email
		}
		balances = append(balances, b)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].AccountID < balances[j].AccountID })
	return balances, nil
}

func (m *memStore) FindProductByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListProducts(_ context.Context, limit, offset int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []models.Product
	for _, p := range m.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	if offset >= len(products) {
		return nil, nil
	}
	end := offset + limit
	if end > len(products) {
		end = len(products)
	}
	return products[offset:end], nil
}

// seed inserts a transaction directly, bypassing the service
func (m *memStore) seed(accountID int64, amount float64, kind models.TransactionKind, status models.TransactionStatus) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTx++
	m.txs = append(m.txs, &models.Transaction{
		ID:            m.nextTx,
		Reference:     "seed",
		AccountID:     accountID,
		Amount:        amount,
		Kind:          kind,
		Status:        status,
		PaymentMethod: models.MethodQR,
		CreatedAt:     time.Now(),
	})
	return m.nextTx
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

func pageNewestFirst(details []models.TransactionDetail, limit, offset int) []models.TransactionDetail {
	sort.Slice(details, func(i, j int) bool { return details[i].ID > details[j].ID })
	if offset >= len(details) {
		return nil
	}
	end := offset + limit
	if end > len(details) {
		end = len(details)
	}
	return details[offset:end]
}
