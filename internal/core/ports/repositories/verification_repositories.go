package repositories

import (
	"context"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

// VerificationRepository persists submitted identity payloads.
type VerificationRepository interface {
	// SaveVerification stores the payload and flips the account's verification
	// status in one database transaction. A second submission for the same
	// account fails with apperrors.ErrDuplicate and changes nothing.
	SaveVerification(ctx context.Context, verification domain.Verification) error

	// FindVerificationByAccountID retrieves the submitted payload, if any.
	FindVerificationByAccountID(ctx context.Context, accountID string) (*domain.Verification, error)
}
