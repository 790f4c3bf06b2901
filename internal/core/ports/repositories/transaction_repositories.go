package repositories

import (
	"context"
	"time"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

// TransactionSort is the ordering applied by ListTransactionsByAccountID.
type TransactionSort string

const (
	SortNewest  TransactionSort = "newest"
	SortOldest  TransactionSort = "oldest"
	SortHighest TransactionSort = "highest"
	SortLowest  TransactionSort = "lowest"
)

// TransactionFilter narrows a transaction listing. Kind matches exactly;
// AmountContains is a substring match on the formatted USD amount.
type TransactionFilter struct {
	Kind           *domain.TransactionKind
	AmountContains string
	Sort           TransactionSort
}

// TransactionReader defines read operations on the transaction log.
type TransactionReader interface {
	// FindTransactionByID retrieves a single transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccountID retrieves the transactions of one account,
	// filtered and sorted per the given filter.
	ListTransactionsByAccountID(ctx context.Context, accountID string, filter TransactionFilter) ([]domain.Transaction, error)

	// FindDueSettlements returns PENDING transactions whose settle_due_at has
	// passed. It is the level-triggered source for the recovery sweep: due
	// work is re-derived from stored state, never from an in-memory timer.
	FindDueSettlements(ctx context.Context, asOf time.Time, limit int) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations on the transaction log.
type TransactionWriter interface {
	// SaveTransactionWithBalanceChange appends the transaction and applies its
	// balance delta to the account inside one database transaction, returning
	// the new balance. The append is keyed by the transaction ID, so replaying
	// the same transaction never double-applies the balance change.
	SaveTransactionWithBalanceChange(ctx context.Context, txn domain.Transaction) (int64, error)

	// UpdateTransactionStatus performs a compare-and-swap status transition
	// and returns the updated transaction. If the current status is not
	// `from`, it fails with apperrors.ErrConflict and changes nothing.
	UpdateTransactionStatus(ctx context.Context, transactionID string, from, to domain.TransactionStatus, settledAt time.Time) (*domain.Transaction, error)
}

// TransactionRepository combines all transaction log operations.
type TransactionRepository interface {
	TransactionReader
	TransactionWriter
}
