package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

const subscriptionBuffer = 16

// changeNotifier is an in-memory per-account publish/subscribe channel.
// Snapshots are rebuilt from the stores on every publish, so delivery reflects
// committed state and never an in-memory shadow copy. Each delivery is the
// whole account state; under a slow consumer older snapshots are dropped in
// favour of newer ones, which preserves commit order for what is delivered.
type changeNotifier struct {
	accountRepo portsrepo.AccountReader
	txnRepo     portsrepo.TransactionReader

	mu     sync.RWMutex
	subs   map[string]map[uint64]chan domain.AccountState
	nextID uint64

	// snapMu serializes snapshot builds per account so two publishes for the
	// same account cannot deliver out of commit order.
	snapMu   sync.Mutex
	accountL map[string]*sync.Mutex
}

// NewChangeNotifier creates a notifier reading snapshots from the given
// stores.
func NewChangeNotifier(accountRepo portsrepo.AccountReader, txnRepo portsrepo.TransactionReader) portssvc.ChangeNotifier {
	return &changeNotifier{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		subs:        make(map[string]map[uint64]chan domain.AccountState),
		accountL:    make(map[string]*sync.Mutex),
	}
}

var _ portssvc.ChangeNotifier = (*changeNotifier)(nil)

func (n *changeNotifier) accountLock(accountID string) *sync.Mutex {
	n.snapMu.Lock()
	defer n.snapMu.Unlock()
	l, ok := n.accountL[accountID]
	if !ok {
		l = &sync.Mutex{}
		n.accountL[accountID] = l
	}
	return l
}

func (n *changeNotifier) snapshot(ctx context.Context, accountID string) (domain.AccountState, error) {
	account, err := n.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return domain.AccountState{}, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	txns, err := n.txnRepo.ListTransactionsByAccountID(ctx, accountID, portsrepo.TransactionFilter{Sort: portsrepo.SortNewest})
	if err != nil {
		return domain.AccountState{}, fmt.Errorf("failed to load transactions for %s: %w", accountID, err)
	}
	return domain.AccountState{Account: *account, Transactions: txns}, nil
}

// Subscribe implements portssvc.ChangeNotifier.
func (n *changeNotifier) Subscribe(ctx context.Context, accountID string) (*portssvc.AccountSubscription, error) {
	lock := n.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := n.snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}

	ch := make(chan domain.AccountState, subscriptionBuffer)
	ch <- snap

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if n.subs[accountID] == nil {
		n.subs[accountID] = make(map[uint64]chan domain.AccountState)
	}
	n.subs[accountID][id] = ch
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.subs[accountID]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
				if len(subs) == 0 {
					delete(n.subs, accountID)
				}
			}
		}
	}

	return &portssvc.AccountSubscription{C: ch, Cancel: cancel}, nil
}

// Publish implements portssvc.ChangeNotifier. Errors while rebuilding the
// snapshot are logged and swallowed: publication is fan-out of already
// committed state, never part of the mutation itself.
func (n *changeNotifier) Publish(ctx context.Context, accountID string) {
	lock := n.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := n.snapshot(ctx, accountID)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to build account snapshot for publish",
			slog.String("account_id", accountID), slog.String("error", err.Error()))
		return
	}

	// Hold the read lock during delivery so Cancel (which closes the channel
	// under the write lock) cannot interleave with a send.
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, ch := range n.subs[accountID] {
		deliver(ch, snap)
	}
}

// deliver sends without blocking; when the buffer is full the oldest snapshot
// is discarded to make room for the newest one.
func deliver(ch chan domain.AccountState, snap domain.AccountState) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
