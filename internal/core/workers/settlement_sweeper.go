// Package workers holds the background loops of the service. The settlement
// sweeper is the only one: a level-triggered reconciliation pass that settles
// pending withdrawals whose confirmation delay has elapsed.
package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/qfsvault/qfs_vault_app/internal/apperrors"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
)

const sweepBatchSize = 100

// SettlementSweeper re-derives due settlement work from persisted PENDING
// rows. The in-process timers started at withdrawal time usually win; the
// sweeper exists so a restart, a missed timer, or a transient store failure
// never strands a transaction in PENDING.
type SettlementSweeper struct {
	txnRepo  portsrepo.TransactionReader
	settler  portssvc.SettlementSvcFacade
	interval time.Duration
	logger   *slog.Logger
}

// NewSettlementSweeper creates a sweeper that scans every interval.
func NewSettlementSweeper(txnRepo portsrepo.TransactionReader, settler portssvc.SettlementSvcFacade, interval time.Duration, logger *slog.Logger) *SettlementSweeper {
	return &SettlementSweeper{
		txnRepo:  txnRepo,
		settler:  settler,
		interval: interval,
		logger:   logger.With(slog.String("worker", "settlement_sweeper")),
	}
}

// Run sweeps immediately (recovery after restart) and then on every tick until
// the context is cancelled.
func (w *SettlementSweeper) Run(ctx context.Context) {
	w.logger.Info("Settlement sweeper started", slog.Duration("interval", w.interval))

	w.sweep(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Settlement sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SettlementSweeper) sweep(ctx context.Context) {
	due, err := w.txnRepo.FindDueSettlements(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		w.logger.Error("Failed to load due settlements", slog.String("error", err.Error()))
		return
	}
	if len(due) == 0 {
		return
	}

	w.logger.Info("Sweeping due settlements", slog.Int("count", len(due)))
	for _, txn := range due {
		err := w.settler.Settle(ctx, txn.TransactionID)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrConflict):
			// Another settler won the CAS; nothing left to do.
			w.logger.Debug("Settlement already applied", slog.String("transaction_id", txn.TransactionID))
		default:
			// Left PENDING; the next sweep retries it.
			w.logger.Warn("Failed to settle transaction",
				slog.String("transaction_id", txn.TransactionID), slog.String("error", err.Error()))
		}
	}
}
