package services

import (
	"context"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

// AccountSvcFacade provisions and reads custodial accounts.
type AccountSvcFacade interface {
	// CreateAccount creates a new account with a zero balance and
	// NOT_SUBMITTED verification status.
	CreateAccount(ctx context.Context) (*domain.Account, error)

	// GetAccount retrieves an account by ID.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// DepositAddress returns the deposit address issued for the account and
	// asset. Addresses are deterministic per (account, asset); no real chain
	// is involved.
	DepositAddress(ctx context.Context, accountID, assetSymbol string) (string, error)
}
