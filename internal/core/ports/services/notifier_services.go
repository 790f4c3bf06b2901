package services

import (
	"context"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

// AccountSubscription is one live subscription to an account's state stream.
// C yields whole-state snapshots in commit order; Cancel stops delivery and
// releases the subscription without affecting other subscribers.
type AccountSubscription struct {
	C      <-chan domain.AccountState
	Cancel func()
}

// ChangeNotifier fans committed balance and transaction-log changes out to
// stream subscribers.
type ChangeNotifier interface {
	// Subscribe registers an observer for one account. The current state is
	// delivered immediately, then a fresh snapshot after every committed
	// change.
	Subscribe(ctx context.Context, accountID string) (*AccountSubscription, error)

	// Publish notifies subscribers of accountID that a change was committed.
	Publish(ctx context.Context, accountID string)
}
