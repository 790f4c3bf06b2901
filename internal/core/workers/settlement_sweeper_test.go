package workers_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	"github.com/qfsvault/qfs_vault_app/internal/core/workers"
)

// MockTransactionReader is a mock type for the TransactionReader interface
type MockTransactionReader struct {
	mock.Mock
}

func (m *MockTransactionReader) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionReader) ListTransactionsByAccountID(ctx context.Context, accountID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockTransactionReader) FindDueSettlements(ctx context.Context, asOf time.Time, limit int) ([]domain.Transaction, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockSettler is a mock type for the SettlementSvcFacade interface
type MockSettler struct {
	mock.Mock
}

func (m *MockSettler) Deposit(ctx context.Context, accountID string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amountUSD, assetSymbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockSettler) Withdraw(ctx context.Context, accountID, destinationAddress string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, destinationAddress, amountUSD, assetSymbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockSettler) Settle(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockSettler) ListTransactions(ctx context.Context, accountID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// runOneSweep runs the sweeper with an already cancelled context, which still
// performs the immediate startup sweep before the loop observes cancellation.
func runOneSweep(sweeper *workers.SettlementSweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweeper.Run(ctx)
}

func pendingWithdrawal(accountID string) domain.Transaction {
	due := time.Now().UTC().Add(-time.Second)
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     accountID,
		Kind:          domain.Withdraw,
		Status:        domain.Pending,
		SettleDueAt:   &due,
	}
}

func TestSweeper_SettlesDueTransactions(t *testing.T) {
	mockReader := new(MockTransactionReader)
	mockSettler := new(MockSettler)
	sweeper := workers.NewSettlementSweeper(mockReader, mockSettler, time.Hour, slog.Default())

	accountID := uuid.NewString()
	first := pendingWithdrawal(accountID)
	second := pendingWithdrawal(accountID)

	mockReader.On("FindDueSettlements", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return([]domain.Transaction{first, second}, nil).Once()
	mockSettler.On("Settle", mock.Anything, first.TransactionID).Return(nil).Once()
	mockSettler.On("Settle", mock.Anything, second.TransactionID).Return(nil).Once()

	runOneSweep(sweeper)

	mockReader.AssertExpectations(t)
	mockSettler.AssertExpectations(t)
}

func TestSweeper_ToleratesLostCASRace(t *testing.T) {
	mockReader := new(MockTransactionReader)
	mockSettler := new(MockSettler)
	sweeper := workers.NewSettlementSweeper(mockReader, mockSettler, time.Hour, slog.Default())

	accountID := uuid.NewString()
	alreadySettled := pendingWithdrawal(accountID)
	stillDue := pendingWithdrawal(accountID)

	mockReader.On("FindDueSettlements", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return([]domain.Transaction{alreadySettled, stillDue}, nil).Once()
	// The in-process timer won the race for the first one
	mockSettler.On("Settle", mock.Anything, alreadySettled.TransactionID).Return(apperrors.ErrConflict).Once()
	mockSettler.On("Settle", mock.Anything, stillDue.TransactionID).Return(nil).Once()

	runOneSweep(sweeper)

	mockSettler.AssertExpectations(t)
}

func TestSweeper_ContinuesPastSettleFailure(t *testing.T) {
	mockReader := new(MockTransactionReader)
	mockSettler := new(MockSettler)
	sweeper := workers.NewSettlementSweeper(mockReader, mockSettler, time.Hour, slog.Default())

	accountID := uuid.NewString()
	failing := pendingWithdrawal(accountID)
	healthy := pendingWithdrawal(accountID)

	mockReader.On("FindDueSettlements", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return([]domain.Transaction{failing, healthy}, nil).Once()
	mockSettler.On("Settle", mock.Anything, failing.TransactionID).Return(assert.AnError).Once()
	mockSettler.On("Settle", mock.Anything, healthy.TransactionID).Return(nil).Once()

	runOneSweep(sweeper)

	mockSettler.AssertExpectations(t)
}

func TestSweeper_ReadFailureSkipsSweep(t *testing.T) {
	mockReader := new(MockTransactionReader)
	mockSettler := new(MockSettler)
	sweeper := workers.NewSettlementSweeper(mockReader, mockSettler, time.Hour, slog.Default())

	mockReader.On("FindDueSettlements", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return(nil, assert.AnError).Once()

	runOneSweep(sweeper)

	mockSettler.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}

func TestSweeper_NothingDue(t *testing.T) {
	mockReader := new(MockTransactionReader)
	mockSettler := new(MockSettler)
	sweeper := workers.NewSettlementSweeper(mockReader, mockSettler, time.Hour, slog.Default())

	mockReader.On("FindDueSettlements", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).Return([]domain.Transaction{}, nil).Once()

	runOneSweep(sweeper)

	mockSettler.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}
