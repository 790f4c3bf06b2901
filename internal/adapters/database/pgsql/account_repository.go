package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAccountRepository creates a new repository for account data.
func NewPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, balance_minor, verification_status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.BalanceMinorUnits,
		account.VerificationStatus,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, balance_minor, verification_status, created_at, last_updated_at
		FROM accounts
		WHERE account_id = $1;
	`
	var acc domain.Account
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&acc.AccountID,
		&acc.BalanceMinorUnits,
		&acc.VerificationStatus,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &acc, nil
}

// AdjustBalance applies a signed delta to the balance in a single guarded
// UPDATE. The row lock serializes concurrent adjustments on the same account;
// different accounts touch different rows and do not block each other. The
// guard rejects any delta that would take the balance negative, regardless of
// what the caller checked beforehand.
func (r *PgxAccountRepository) AdjustBalance(ctx context.Context, accountID string, deltaMinor int64, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET balance_minor = balance_minor + $2, last_updated_at = $3
		WHERE account_id = $1 AND balance_minor + $2 >= 0
		RETURNING balance_minor;
	`
	var newBalance int64
	err := r.pool.QueryRow(ctx, query, accountID, deltaMinor, now).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyAdjustFailure(ctx, accountID)
		}
		return 0, fmt.Errorf("failed to adjust balance for account %s: %w", accountID, err)
	}
	return newBalance, nil
}

// classifyAdjustFailure distinguishes a missing account from a rejected
// overdraw after a zero-row guarded UPDATE.
func (r *PgxAccountRepository) classifyAdjustFailure(ctx context.Context, accountID string) error {
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

// MarkVerificationSubmitted flips NOT_SUBMITTED -> SUBMITTED with a CAS
// UPDATE; the transition is one-way.
func (r *PgxAccountRepository) MarkVerificationSubmitted(ctx context.Context, accountID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET verification_status = $2, last_updated_at = $3
		WHERE account_id = $1 AND verification_status = $4;
	`
	tag, err := r.pool.Exec(ctx, query, accountID, domain.VerificationSubmitted, now, domain.VerificationNotSubmitted)
	if err != nil {
		return fmt.Errorf("failed to update verification status for account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		return fmt.Errorf("%w: verification already submitted for account %s", apperrors.ErrDuplicate, accountID)
	}
	return nil
}
