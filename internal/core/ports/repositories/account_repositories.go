package repositories

import (
	"context"
	"time"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// AdjustBalance atomically applies a signed delta (in minor units) to an
	// account balance and returns the new balance. Concurrent adjustments on
	// the same account serialize; an adjustment that would take the balance
	// negative fails with apperrors.ErrInsufficientFunds and leaves the
	// balance untouched. Returns apperrors.ErrNotFound for unknown accounts.
	AdjustBalance(ctx context.Context, accountID string, deltaMinor int64, now time.Time) (int64, error)

	// MarkVerificationSubmitted flips the account's verification status from
	// NOT_SUBMITTED to SUBMITTED. The transition is one-way; if the account is
	// already SUBMITTED it fails with apperrors.ErrDuplicate.
	MarkVerificationSubmitted(ctx context.Context, accountID string, now time.Time) error
}

// AccountRepository combines all account-related repository operations.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
