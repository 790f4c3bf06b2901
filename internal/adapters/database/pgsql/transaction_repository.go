package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
)

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// NewPgxTransactionRepository creates a new repository for the transaction
// log.
func NewPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, account_id, kind, amount_usd_minor, amount_asset, asset_symbol, destination_address, status, created_at, settle_due_at, settled_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var destinationAddress *string
	err := row.Scan(
		&txn.TransactionID,
		&txn.AccountID,
		&txn.Kind,
		&txn.AmountUSDMinor,
		&txn.AmountAsset,
		&txn.AssetSymbol,
		&destinationAddress,
		&txn.Status,
		&txn.CreatedAt,
		&txn.SettleDueAt,
		&txn.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	if destinationAddress != nil {
		txn.DestinationAddress = *destinationAddress
	}
	return &txn, nil
}

// SaveTransactionWithBalanceChange appends the transaction and applies its
// balance delta inside one database transaction. A crash between the two
// writes is impossible to observe: either both commit or neither does. The
// append is keyed by transaction_id, so replaying the same logical unit is a
// no-op rather than a second balance change.
func (r *PgxTransactionRepository) SaveTransactionWithBalanceChange(ctx context.Context, txn domain.Transaction) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	insertQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (transaction_id) DO NOTHING;
	`
	var destinationAddress *string
	if txn.DestinationAddress != "" {
		destinationAddress = &txn.DestinationAddress
	}
	tag, err := tx.Exec(ctx, insertQuery,
		txn.TransactionID,
		txn.AccountID,
		txn.Kind,
		txn.AmountUSDMinor,
		txn.AmountAsset,
		txn.AssetSymbol,
		destinationAddress,
		txn.Status,
		txn.CreatedAt,
		txn.SettleDueAt,
		txn.SettledAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	if tag.RowsAffected() == 0 {
		// Replay of an already applied unit: skip the balance change and
		// report the current balance.
		var balance int64
		if err := tx.QueryRow(ctx, `SELECT balance_minor FROM accounts WHERE account_id = $1;`, txn.AccountID).Scan(&balance); err != nil {
			return 0, fmt.Errorf("failed to read balance for account %s: %w", txn.AccountID, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
		}
		return balance, nil
	}

	updateQuery := `
		UPDATE accounts
		SET balance_minor = balance_minor + $2, last_updated_at = $3
		WHERE account_id = $1 AND balance_minor + $2 >= 0
		RETURNING balance_minor;
	`
	var newBalance int64
	err = tx.QueryRow(ctx, updateQuery, txn.AccountID, txn.BalanceDelta(), txn.CreatedAt).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyAdjustFailure(ctx, txn.AccountID)
		}
		return 0, fmt.Errorf("failed to adjust balance for account %s: %w", txn.AccountID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction %s: %w", txn.TransactionID, err)
	}
	return newBalance, nil
}

func (r *PgxTransactionRepository) classifyAdjustFailure(ctx context.Context, accountID string) error {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT balance_minor FROM accounts WHERE account_id = $1;`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to inspect account %s after rejected adjustment: %w", accountID, err)
	}
	return fmt.Errorf("%w: balance %d", apperrors.ErrInsufficientFunds, balance)
}

// FindTransactionByID retrieves a single transaction.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactionsByAccountID retrieves an account's transactions, filtered
// and sorted in SQL.
func (r *PgxTransactionRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []interface{}{accountID}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.AmountContains != "" {
		// Substring match on the formatted USD amount, e.g. "500.00".
		args = append(args, filter.AmountContains)
		query += fmt.Sprintf(" AND to_char(amount_usd_minor / 100.0, 'FM999999999990.00') LIKE '%%' || $%d || '%%'", len(args))
	}

	switch filter.Sort {
	case portsrepo.SortOldest:
		query += " ORDER BY created_at ASC, transaction_id ASC"
	case portsrepo.SortHighest:
		query += " ORDER BY amount_usd_minor DESC, created_at DESC"
	case portsrepo.SortLowest:
		query += " ORDER BY amount_usd_minor ASC, created_at DESC"
	default:
		query += " ORDER BY created_at DESC, transaction_id DESC"
	}
	query += ";"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}
	return transactions, nil
}

// FindDueSettlements returns PENDING transactions whose due time has passed,
// oldest first.
func (r *PgxTransactionRepository) FindDueSettlements(ctx context.Context, asOf time.Time, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE status = $1 AND settle_due_at <= $2
		ORDER BY settle_due_at ASC
		LIMIT $3;
	`
	rows, err := r.pool.Query(ctx, query, domain.Pending, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due settlements: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due settlement row: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due settlement rows: %w", err)
	}
	return transactions, nil
}

// UpdateTransactionStatus performs the compare-and-swap status transition.
// Exactly one of any set of concurrent attempts succeeds; the rest observe
// ErrConflict.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, from, to domain.TransactionStatus, settledAt time.Time) (*domain.Transaction, error) {
	query := `
		UPDATE transactions
		SET status = $3, settled_at = $4
		WHERE transaction_id = $1 AND status = $2
		RETURNING ` + transactionColumns + `;
	`
	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID, from, to, settledAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindTransactionByID(ctx, transactionID); findErr != nil {
				return nil, findErr
			}
			return nil, fmt.Errorf("%w: transaction %s is not %s", apperrors.ErrConflict, transactionID, from)
		}
		return nil, fmt.Errorf("failed to update status for transaction %s: %w", transactionID, err)
	}
	return txn, nil
}
