package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// CreateTransactionInput carries the caller-supplied fields of a new
// ledger entry. ProofImageURL is already resolved by the proof store.
type CreateTransactionInput struct {
	Amount        float64
	Kind          models.TransactionKind
	Description   string
	ProductID     *int64
	PaymentMethod models.PaymentMethod
	ProofImageURL string
}

// CreateTransaction validates and persists a new ledger entry for the
// account. A purchase paid from the wallet balance is checked against the
// derived balance and settles instantly; everything else starts pending.
// The balance check and the insert it guards run under the account lock,
// so two concurrent balance-paid purchases cannot both pass the check.
func (s *Service) CreateTransaction(ctx context.Context, accountID int64, in CreateTransactionInput) (*models.Transaction, error) {
	if in.Kind == "" || !in.Kind.Valid() {
		return nil, ErrMissingFields
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.MethodQR
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrMissingFields
	}
	if in.ProductID != nil {
		_, err := s.store.FindProductByID(ctx, *in.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	unlock := s.lockAccount(accountID)
	defer unlock()

	status := models.StatusPending
	if in.Kind == models.KindPurchase && in.PaymentMethod == models.MethodBalance {
		balance, err := s.store.SumCompleted(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if balance < in.Amount {
			return nil, ErrInsufficientBalance
		}
		// Covered by the derived balance, settle immediately.
		status = models.StatusCompleted
	}

	tx := &models.Transaction{
		Reference:     uuid.NewString(),
		AccountID:     accountID,
		Amount:        in.Amount,
		Kind:          in.Kind,
		Status:        status,
		Description:   in.Description,
		ProofImageURL: in.ProofImageURL,
		ProductID:     in.ProductID,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s created for account %d: %s %s %.2f",
		tx.Reference, accountID, tx.Status, tx.Kind, tx.Amount)
	return tx, nil
}

// DeriveBalance recomputes the account balance from completed entries.
// Pure read, never cached.
func (s *Service) DeriveBalance(ctx context.Context, accountID int64) (float64, error) {
	return s.store.SumCompleted(ctx, accountID)
}

// UpdateStatus overwrites the status of a transaction. Any status may move
// to any other status; terminality is a UI convention, not enforced here.
// When the status actually changes to completed or rejected the owning
// account is notified by mail, best effort.
func (s *Service) UpdateStatus(ctx context.Context, txID int64, newStatus models.TransactionStatus) (*models.Transaction, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.store.FindTransactionByID(ctx, txID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	unlock := s.lockAccount(current.AccountID)
	defer unlock()

	updated, err := s.store.UpdateTransactionStatus(ctx, txID, newStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %d status: %s -> %s", txID, current.Status, updated.Status)

	if current.Status != updated.Status &&
		(updated.Status == models.StatusCompleted || updated.Status == models.StatusRejected) {
		s.notifyStatusChange(updated)
	}
	return updated, nil
}

// ListTransactions returns one account's history, newest first
func (s *Service) ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]models.TransactionDetail, error) {
	return s.store.ListByAccount(ctx, accountID, clampLimit(limit), offset)
}

// ListAllTransactions returns every account's history, newest first.
// Admin view.
func (s *Service) ListAllTransactions(ctx context.Context, limit, offset int) ([]models.TransactionDetail, error) {
	return s.store.ListAll(ctx, clampLimit(limit), offset)
}

// ExportTransactions returns the full ledger for the statement export.
// Paging is deliberately bypassed, an audit statement covers everything.
func (s *Service) ExportTransactions(ctx context.Context) ([]models.TransactionDetail, error) {
	const exportBatch = 1000

	var all []models.TransactionDetail
	for offset := 0; ; offset += exportBatch {
		batch, err := s.store.ListAll(ctx, exportBatch, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < exportBatch {
			return all, nil
		}
	}
}

// notifyStatusChange mails the owning account about a settled or rejected
// transaction. Failures are logged and never fail the update.
func (s *Service) notifyStatusChange(tx *models.Transaction) {
	if s.notifier == nil {
		return
	}
	txCopy := *tx
	go func() {
		ctx := context.Background()
		account, err := s.store.FindAccountByID(ctx, txCopy.AccountID)
		if err != nil {
			s.log.Errorf("Failed to load account %d for notification: %v", txCopy.AccountID, err)
			return
		}
		balance, err := s.store.SumCompleted(ctx, txCopy.AccountID)
		if err != nil {
			s.log.Errorf("Failed to derive balance for notification: %v", err)
			return
		}
		if err := s.notifier.SendStatusNotification(account.Email, account.Name, &txCopy, balance); err != nil {
			s.log.Errorf("Failed to send status notification: %v", err)
		}
	}()
}
