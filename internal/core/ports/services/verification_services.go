package services

import (
	"context"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
)

// VerificationSvcFacade is the one-way identity verification gate.
type VerificationSvcFacade interface {
	// Submit records the identity payload and moves the account to SUBMITTED.
	// A second submission fails with ErrDuplicate and leaves the status
	// unchanged.
	Submit(ctx context.Context, accountID string, req dto.SubmitVerificationRequest) (*domain.Verification, error)

	// GetStatus returns the account's current verification status.
	GetStatus(ctx context.Context, accountID string) (domain.VerificationStatus, error)

	// GetVerification returns the submitted identity payload. Fails with
	// ErrNotFound when nothing has been submitted for the account.
	GetVerification(ctx context.Context, accountID string) (*domain.Verification, error)

	// MayWithdraw reports whether withdrawals may be created for the account.
	// Derived read, no side effects.
	MayWithdraw(ctx context.Context, accountID string) (bool, error)
}
