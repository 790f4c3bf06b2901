package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// accountService provides account provisioning and reads.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount implements portssvc.AccountSvcFacade.
func (s *accountService) CreateAccount(ctx context.Context) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:          uuid.NewString(),
		BalanceMinorUnits:  0,
		VerificationStatus: domain.VerificationNotSubmitted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	return &account, nil
}

// GetAccount implements portssvc.AccountSvcFacade.
func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

// DepositAddress implements portssvc.AccountSvcFacade. Addresses are a
// deterministic digest of (account, asset); no real chain is involved, the
// caller only needs a stable opaque string to show.
func (s *accountService) DepositAddress(ctx context.Context, accountID, assetSymbol string) (string, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return "", fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	sum := sha256.Sum256([]byte(accountID + ":" + assetSymbol))
	digest := hex.EncodeToString(sum[:])

	switch assetSymbol {
	case "BTC":
		return "bc1q" + digest[:38], nil
	case "ETH", "USDT":
		return "0x" + digest[:40], nil
	default:
		return "", fmt.Errorf("%w: unsupported asset %q", apperrors.ErrValidation, assetSymbol)
	}
}
