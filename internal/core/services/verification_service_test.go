package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/core/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
)

// MockVerificationRepository is a mock type for the VerificationRepository interface
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) SaveVerification(ctx context.Context, verification domain.Verification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *MockVerificationRepository) FindVerificationByAccountID(ctx context.Context, accountID string) (*domain.Verification, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verification), args.Error(1)
}

// --- Test Suite Setup ---

type VerificationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo      *MockAccountRepository
	mockVerificationRepo *MockVerificationRepository
	service              portssvc.VerificationSvcFacade
}

func (suite *VerificationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockVerificationRepo = new(MockVerificationRepository)
	suite.service = services.NewVerificationService(suite.mockAccountRepo, suite.mockVerificationRepo)
}

func validVerificationRequest() dto.SubmitVerificationRequest {
	return dto.SubmitVerificationRequest{
		FullName:     "Jane Doe",
		DateOfBirth:  "1990-04-21",
		SSN:          "123-45-6789",
		Address:      "1 Main St",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62701",
		LicenseFront: "front-image-data",
		LicenseBack:  "back-image-data",
	}
}

// --- Test Cases ---

func (suite *VerificationServiceTestSuite) TestSubmit_Success() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, VerificationStatus: domain.VerificationNotSubmitted}
	req := validVerificationRequest()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockVerificationRepo.On("SaveVerification", ctx, mock.MatchedBy(func(v domain.Verification) bool {
		return v.AccountID == accountID &&
			v.VerificationID != "" &&
			v.FullName == req.FullName &&
			v.SSN == req.SSN
	})).Return(nil).Once()

	verification, err := suite.service.Submit(ctx, accountID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(verification)
	suite.Equal(accountID, verification.AccountID)
	suite.NotEmpty(verification.VerificationID)
	suite.WithinDuration(time.Now(), verification.SubmittedAt, time.Second)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockVerificationRepo.AssertExpectations(suite.T())
}

func (suite *VerificationServiceTestSuite) TestSubmit_AccountNotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	verification, err := suite.service.Submit(ctx, accountID, validVerificationRequest())

	suite.Require().Error(err)
	suite.Nil(verification)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.mockVerificationRepo.AssertNotCalled(suite.T(), "SaveVerification", mock.Anything, mock.Anything)
}

func (suite *VerificationServiceTestSuite) TestSubmit_AlreadySubmitted() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, VerificationStatus: domain.VerificationSubmitted}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()
	suite.mockVerificationRepo.On("SaveVerification", ctx, mock.AnythingOfType("domain.Verification")).Return(apperrors.ErrDuplicate).Once()

	verification, err := suite.service.Submit(ctx, accountID, validVerificationRequest())

	suite.Require().Error(err)
	suite.Nil(verification)
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	suite.mockVerificationRepo.AssertExpectations(suite.T())
}

func (suite *VerificationServiceTestSuite) TestGetStatus() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, VerificationStatus: domain.VerificationSubmitted}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()

	status, err := suite.service.GetStatus(ctx, accountID)

	suite.Require().NoError(err)
	suite.Equal(domain.VerificationSubmitted, status)
}

func (suite *VerificationServiceTestSuite) TestGetVerification_Success() {
	ctx := context.Background()
	accountID := uuid.NewString()
	expected := &domain.Verification{
		VerificationID: uuid.NewString(),
		AccountID:      accountID,
		FullName:       "Jane Doe",
		SubmittedAt:    time.Now().UTC(),
	}

	suite.mockVerificationRepo.On("FindVerificationByAccountID", ctx, accountID).Return(expected, nil).Once()

	verification, err := suite.service.GetVerification(ctx, accountID)

	suite.Require().NoError(err)
	suite.Equal(expected, verification)

	suite.mockVerificationRepo.AssertExpectations(suite.T())
}

func (suite *VerificationServiceTestSuite) TestGetVerification_NotFound() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockVerificationRepo.On("FindVerificationByAccountID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	verification, err := suite.service.GetVerification(ctx, accountID)

	suite.Require().Error(err)
	suite.Nil(verification)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *VerificationServiceTestSuite) TestMayWithdraw_NotSubmitted() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, VerificationStatus: domain.VerificationNotSubmitted}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()

	allowed, err := suite.service.MayWithdraw(ctx, accountID)

	suite.Require().NoError(err)
	suite.False(allowed)
}

func (suite *VerificationServiceTestSuite) TestMayWithdraw_Submitted() {
	ctx := context.Background()
	accountID := uuid.NewString()
	account := &domain.Account{AccountID: accountID, VerificationStatus: domain.VerificationSubmitted}

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(account, nil).Once()

	allowed, err := suite.service.MayWithdraw(ctx, accountID)

	suite.Require().NoError(err)
	suite.True(allowed)
}

// --- Run Test Suite ---

func TestVerificationService(t *testing.T) {
	suite.Run(t, new(VerificationServiceTestSuite))
}
