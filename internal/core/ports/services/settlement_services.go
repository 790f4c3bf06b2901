package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
)

// SettlementSvcFacade orchestrates deposits and withdrawals: validation, the
// atomic ledger+log mutation, and the asynchronous pending->settled step.
type SettlementSvcFacade interface {
	// Deposit credits the account and appends a SETTLED deposit transaction.
	// Fails with ErrValidation for a non-positive or sub-cent amount or an
	// unknown asset, and ErrNotFound for an unknown account.
	Deposit(ctx context.Context, accountID string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error)

	// Withdraw debits the account and appends a PENDING withdrawal, then
	// schedules its settlement after the configured delay. All preconditions
	// (amount, address, account, balance, verification) are checked before any
	// mutation; a rejected request has no partial effect.
	Withdraw(ctx context.Context, accountID, destinationAddress string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error)

	// Settle moves one transaction PENDING->SETTLED. It is idempotent from the
	// caller's perspective: losing the CAS race surfaces ErrConflict, which
	// callers treat as already settled.
	Settle(ctx context.Context, transactionID string) error

	// ListTransactions returns the account's transaction history, filtered and
	// sorted.
	ListTransactions(ctx context.Context, accountID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, error)
}
