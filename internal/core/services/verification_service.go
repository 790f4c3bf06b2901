package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// verificationService is the one-way identity verification gate.
type verificationService struct {
	accountRepo      portsrepo.AccountReader
	verificationRepo portsrepo.VerificationRepository
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(accountRepo portsrepo.AccountReader, verificationRepo portsrepo.VerificationRepository) portssvc.VerificationSvcFacade {
	return &verificationService{
		accountRepo:      accountRepo,
		verificationRepo: verificationRepo,
	}
}

var _ portssvc.VerificationSvcFacade = (*verificationService)(nil)

// Submit implements portssvc.VerificationSvcFacade. The repository performs
// the payload insert and the status flip in one database transaction, so a
// rejected resubmission leaves no trace.
func (s *verificationService) Submit(ctx context.Context, accountID string, req dto.SubmitVerificationRequest) (*domain.Verification, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	verification := domain.Verification{
		VerificationID: uuid.NewString(),
		AccountID:      accountID,
		FullName:       req.FullName,
		DateOfBirth:    req.DateOfBirth,
		SSN:            req.SSN,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Zip:            req.Zip,
		LicenseFront:   req.LicenseFront,
		LicenseBack:    req.LicenseBack,
		SubmittedAt:    time.Now().UTC(),
	}

	if err := s.verificationRepo.SaveVerification(ctx, verification); err != nil {
		logger.Warn("Failed to save verification", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save verification for account %s: %w", accountID, err)
	}

	logger.Info("Verification submitted", slog.String("account_id", accountID), slog.String("verification_id", verification.VerificationID))
	return &verification, nil
}

// GetStatus implements portssvc.VerificationSvcFacade.
func (s *verificationService) GetStatus(ctx context.Context, accountID string) (domain.VerificationStatus, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account.VerificationStatus, nil
}

// GetVerification implements portssvc.VerificationSvcFacade.
func (s *verificationService) GetVerification(ctx context.Context, accountID string) (*domain.Verification, error) {
	verification, err := s.verificationRepo.FindVerificationByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find verification for account %s: %w", accountID, err)
	}
	return verification, nil
}

// MayWithdraw implements portssvc.VerificationSvcFacade.
func (s *verificationService) MayWithdraw(ctx context.Context, accountID string) (bool, error) {
	status, err := s.GetStatus(ctx, accountID)
	if err != nil {
		return false, err
	}
	return status == domain.VerificationSubmitted, nil
}
