package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
	"github.com/qfsvault/qfs_vault_app/internal/utils/money"
)

// settlementService orchestrates deposits and withdrawals over the ledger and
// the transaction log. All mutation funnels through the repositories' atomic
// operations; the service itself holds no balance state.
type settlementService struct {
	accountRepo portsrepo.AccountRepository
	txnRepo     portsrepo.TransactionRepository
	rates       portssvc.RateConverter
	notifier    portssvc.ChangeNotifier

	settleDelay time.Duration

	// rootCtx bounds the detached settlement timers. The request context
	// cannot be used: the caller returns as soon as the pending transaction is
	// created, and cancelling the request must not cancel its settlement.
	rootCtx context.Context
}

// NewSettlementService creates a new SettlementService. The settlement timer
// goroutines it spawns are bounded by rootCtx; anything still pending at
// shutdown is picked up later by the recovery sweep.
func NewSettlementService(
	rootCtx context.Context,
	accountRepo portsrepo.AccountRepository,
	txnRepo portsrepo.TransactionRepository,
	rates portssvc.RateConverter,
	notifier portssvc.ChangeNotifier,
	settleDelay time.Duration,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		rates:       rates,
		notifier:    notifier,
		settleDelay: settleDelay,
		rootCtx:     rootCtx,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// newTransactionID returns a time-ordered transaction identifier. UUIDv7 keeps
// the log sortable by id without a separate sequence.
func newTransactionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// publishCtx detaches change fan-out from the caller's lifetime. A client that
// disconnects right after the commit must not cancel delivery to the other
// subscribers; only the request logger is carried over.
func (s *settlementService) publishCtx(ctx context.Context) context.Context {
	return middleware.WithLogger(s.rootCtx, middleware.GetLoggerFromCtx(ctx))
}

func validateAmount(amountUSD decimal.Decimal) (int64, error) {
	if amountUSD.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return money.FromUSD(amountUSD)
}

// Deposit implements portssvc.SettlementSvcFacade. Deposits settle
// immediately; there is no confirmation step to wait for.
func (s *settlementService) Deposit(ctx context.Context, accountID string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amountMinor, err := validateAmount(amountUSD)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	amountAsset, err := s.rates.Convert(amountMinor, assetSymbol)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:  newTransactionID(),
		AccountID:      accountID,
		Kind:           domain.Deposit,
		AmountUSDMinor: amountMinor,
		AmountAsset:    amountAsset,
		AssetSymbol:    assetSymbol,
		Status:         domain.Settled,
		CreatedAt:      now,
		SettledAt:      &now,
	}

	newBalance, err := s.txnRepo.SaveTransactionWithBalanceChange(ctx, txn)
	if err != nil {
		logger.Error("Failed to save deposit", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save deposit: %w", err)
	}

	logger.Info("Deposit settled",
		slog.String("account_id", accountID),
		slog.String("transaction_id", txn.TransactionID),
		slog.Int64("new_balance_minor", newBalance),
	)
	s.notifier.Publish(s.publishCtx(ctx), accountID)
	return &txn, nil
}

// Withdraw implements portssvc.SettlementSvcFacade. Every precondition is
// checked before any mutation: a rejected request must leave no partial
// effect, and an unverified user never has funds reserved.
func (s *settlementService) Withdraw(ctx context.Context, accountID, destinationAddress string, amountUSD decimal.Decimal, assetSymbol string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if destinationAddress == "" {
		return nil, fmt.Errorf("%w: destination address is required", apperrors.ErrValidation)
	}
	amountMinor, err := validateAmount(amountUSD)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	if amountMinor > account.BalanceMinorUnits {
		return nil, fmt.Errorf("%w: requested %d, available %d", apperrors.ErrInsufficientFunds, amountMinor, account.BalanceMinorUnits)
	}

	if !account.MayWithdraw() {
		return nil, apperrors.ErrVerificationRequired
	}

	amountAsset, err := s.rates.Convert(amountMinor, assetSymbol)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	due := now.Add(s.settleDelay)
	txn := domain.Transaction{
		TransactionID:      newTransactionID(),
		AccountID:          accountID,
		Kind:               domain.Withdraw,
		AmountUSDMinor:     amountMinor,
		AmountAsset:        amountAsset,
		AssetSymbol:        assetSymbol,
		DestinationAddress: destinationAddress,
		Status:             domain.Pending,
		CreatedAt:          now,
		SettleDueAt:        &due,
	}

	// The balance read above is only a fast precondition check; the repository
	// re-enforces the non-negative invariant inside the same transaction that
	// appends the log entry, so a concurrent withdrawal cannot overdraw.
	newBalance, err := s.txnRepo.SaveTransactionWithBalanceChange(ctx, txn)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return nil, fmt.Errorf("%w: balance changed concurrently", apperrors.ErrInsufficientFunds)
		}
		logger.Error("Failed to save withdrawal", slog.String("account_id", accountID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save withdrawal: %w", err)
	}

	logger.Info("Withdrawal pending",
		slog.String("account_id", accountID),
		slog.String("transaction_id", txn.TransactionID),
		slog.Int64("new_balance_minor", newBalance),
		slog.Time("settle_due_at", due),
	)
	s.notifier.Publish(s.publishCtx(ctx), accountID)
	s.scheduleSettlement(txn.TransactionID)
	return &txn, nil
}

// scheduleSettlement runs the confirmation delay as a detached timer. It is an
// optimization over the recovery sweep, not the source of truth: if the
// process dies before the timer fires, the sweep settles the transaction from
// its persisted due time.
func (s *settlementService) scheduleSettlement(transactionID string) {
	go func() {
		timer := time.NewTimer(s.settleDelay)
		defer timer.Stop()
		select {
		case <-s.rootCtx.Done():
			return
		case <-timer.C:
		}
		if err := s.Settle(s.rootCtx, transactionID); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			middleware.GetLoggerFromCtx(s.rootCtx).Warn("Scheduled settlement failed, leaving to recovery sweep",
				slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		}
	}()
}

// Settle implements portssvc.SettlementSvcFacade.
func (s *settlementService) Settle(ctx context.Context, transactionID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.txnRepo.UpdateTransactionStatus(ctx, transactionID, domain.Pending, domain.Settled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to settle transaction %s: %w", transactionID, err)
	}

	logger.Info("Withdrawal settled",
		slog.String("account_id", txn.AccountID),
		slog.String("transaction_id", txn.TransactionID),
	)
	s.notifier.Publish(s.publishCtx(ctx), txn.AccountID)
	return nil
}

// ListTransactions implements portssvc.SettlementSvcFacade.
func (s *settlementService) ListTransactions(ctx context.Context, accountID string, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if filter.Sort == "" {
		filter.Sort = portsrepo.SortNewest
	}
	txns, err := s.txnRepo.ListTransactionsByAccountID(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	return txns, nil
}
