// Package scheduler runs the periodic ledger audit. Because the balance is
// derived rather than stored, the audit is the place where a settlement
// error (an overdrawn account) becomes visible.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/shop-wallet/internal/models"
)

// BalanceStore derives every account's balance from the ledger.
type BalanceStore interface {
	AccountBalances(ctx context.Context) ([]models.AccountBalance, error)
}

// Alerter delivers overdraw alerts.
type Alerter interface {
	SendOverdrawAlert(to string, accountID int64, balance float64) error
}

// Auditor recomputes all account balances on a cron schedule and alerts
// on negative ones.
type Auditor struct {
	store      BalanceStore
	alerter    Alerter
	log        *logrus.Logger
	adminEmail string
	cron       *cron.Cron
}

// NewAuditor initializes a new auditor. alerter may be nil when mail is
// not configured; findings are then only logged.
func NewAuditor(store BalanceStore, alerter Alerter, log *logrus.Logger, adminEmail string) *Auditor {
	return &Auditor{
		store:      store,
		alerter:    alerter,
		log:        log,
		adminEmail: adminEmail,
	}
}

// Start schedules the audit. The schedule uses the standard five-field
// cron format.
func (a *Auditor) Start(schedule string) error {
	a.cron = cron.New()
	_, err := a.cron.AddFunc(schedule, func() {
		if _, err := a.Run(context.Background()); err != nil {
			a.log.Errorf("Ledger audit failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	a.cron.Start()
	a.log.Infof("Ledger audit scheduled: %s", schedule)
	return nil
}

// Stop cancels the schedule. A run already in flight finishes.
func (a *Auditor) Stop() {
	if a.cron != nil {
		a.cron.Stop()
	}
}

// Run recomputes every account balance once and returns the number of
// overdrawn accounts found.
func (a *Auditor) Run(ctx context.Context) (int, error) {
	balances, err := a.store.AccountBalances(ctx)
	if err != nil {
		return 0, err
	}

	overdrawn := 0
	for _, b := range balances {
		if b.Balance >= 0 {
			a.log.Debugf("Audit: account %d balance %.2f", b.AccountID, b.Balance)
			continue
		}
		overdrawn++
		a.log.Warnf("Audit: account %d is overdrawn, balance %.2f", b.AccountID, b.Balance)
		if a.alerter != nil && a.adminEmail != "" {
			if err := a.alerter.SendOverdrawAlert(a.adminEmail, b.AccountID, b.Balance); err != nil {
				a.log.Errorf("Failed to send overdraw alert for account %d: %v", b.AccountID, err)
			}
		}
	}

	a.log.Infof("Ledger audit finished: %d accounts, %d overdrawn", len(balances), overdrawn)
	return overdrawn, nil
}
