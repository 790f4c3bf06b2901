package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind indicates whether value moved into or out of the account.
type TransactionKind string

const (
	Deposit  TransactionKind = "DEPOSIT"
	Withdraw TransactionKind = "WITHDRAW"
)

// TransactionStatus is the settlement state of a transaction.
// Deposits are created SETTLED; withdrawals are created PENDING and move to
// SETTLED exactly once. The status never moves backwards.
type TransactionStatus string

const (
	Pending TransactionStatus = "PENDING"
	Settled TransactionStatus = "SETTLED"
)

// Transaction is one immutable entry in the append-only transaction log.
// AmountAsset is computed from the rate table at creation time and frozen;
// it is never recomputed even if the rate later changes.
type Transaction struct {
	TransactionID      string            `json:"transactionID"` // UUIDv7, time-ordered
	AccountID          string            `json:"accountID"`
	Kind               TransactionKind   `json:"kind"`
	AmountUSDMinor     int64             `json:"amountUSDMinor"` // positive, cents
	AmountAsset        decimal.Decimal   `json:"amountAsset"`
	AssetSymbol        string            `json:"assetSymbol"`
	DestinationAddress string            `json:"destinationAddress,omitempty"` // withdrawals only
	Status             TransactionStatus `json:"status"`
	CreatedAt          time.Time         `json:"createdAt"`
	SettleDueAt        *time.Time        `json:"settleDueAt,omitempty"` // withdrawals only
	SettledAt          *time.Time        `json:"settledAt,omitempty"`
}

// BalanceDelta is the signed effect this transaction has on the account
// balance in minor units. A withdrawal debits at creation time; funds are
// reserved immediately, not at settlement.
func (t Transaction) BalanceDelta() int64 {
	if t.Kind == Withdraw {
		return -t.AmountUSDMinor
	}
	return t.AmountUSDMinor
}
