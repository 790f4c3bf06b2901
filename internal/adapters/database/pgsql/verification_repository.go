package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
)

type PgxVerificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgxVerificationRepository creates a new repository for identity
// verification payloads.
func NewPgxVerificationRepository(pool *pgxpool.Pool) *PgxVerificationRepository {
	return &PgxVerificationRepository{pool: pool}
}

var _ portsrepo.VerificationRepository = (*PgxVerificationRepository)(nil)

// SaveVerification stores the payload and flips the account's verification
// status in one database transaction. The CAS on the status row makes the
// transition one-way: a second submission rolls back without a trace.
func (r *PgxVerificationRepository) SaveVerification(ctx context.Context, verification domain.Verification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	statusQuery := `
		UPDATE accounts
		SET verification_status = $2, last_updated_at = $3
		WHERE account_id = $1 AND verification_status = $4;
	`
	tag, err := tx.Exec(ctx, statusQuery,
		verification.AccountID,
		domain.VerificationSubmitted,
		verification.SubmittedAt,
		domain.VerificationNotSubmitted,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification status for account %s: %w", verification.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_id = $1);`, verification.AccountID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to inspect account %s: %w", verification.AccountID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: verification already submitted for account %s", apperrors.ErrDuplicate, verification.AccountID)
	}

	insertQuery := `
		INSERT INTO verifications (verification_id, account_id, full_name, date_of_birth, ssn, address, city, state, zip, license_front, license_back, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, insertQuery,
		verification.VerificationID,
		verification.AccountID,
		verification.FullName,
		verification.DateOfBirth,
		verification.SSN,
		verification.Address,
		verification.City,
		verification.State,
		verification.Zip,
		verification.LicenseFront,
		verification.LicenseBack,
		verification.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification for account %s: %w", verification.AccountID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit verification for account %s: %w", verification.AccountID, err)
	}
	return nil
}

// FindVerificationByAccountID retrieves the submitted payload, if any.
func (r *PgxVerificationRepository) FindVerificationByAccountID(ctx context.Context, accountID string) (*domain.Verification, error) {
	query := `
		SELECT verification_id, account_id, full_name, date_of_birth, ssn, address, city, state, zip, license_front, license_back, submitted_at
		FROM verifications
		WHERE account_id = $1;
	`
	var v domain.Verification
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&v.VerificationID,
		&v.AccountID,
		&v.FullName,
		&v.DateOfBirth,
		&v.SSN,
		&v.Address,
		&v.City,
		&v.State,
		&v.Zip,
		&v.LicenseFront,
		&v.LicenseBack,
		&v.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find verification for account %s: %w", accountID, err)
	}
	return &v, nil
}
