package dto

import (
	"github.com/shopspring/decimal"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	"github.com/qfsvault/qfs_vault_app/internal/utils/money"
)

// DepositRequest is the payload for creating a deposit.
type DepositRequest struct {
	AmountUSD   decimal.Decimal `json:"amountUSD" binding:"required"`
	AssetSymbol string          `json:"assetSymbol" binding:"required,uppercase"`
}

// WithdrawRequest is the payload for creating a withdrawal.
type WithdrawRequest struct {
	AmountUSD          decimal.Decimal `json:"amountUSD" binding:"required"`
	AssetSymbol        string          `json:"assetSymbol" binding:"required,uppercase"`
	DestinationAddress string          `json:"destinationAddress" binding:"required"`
}

// TransactionResponse is the API representation of a transaction log entry.
type TransactionResponse struct {
	TransactionID      string `json:"transactionID"`
	AccountID          string `json:"accountID"`
	Kind               string `json:"kind"`
	AmountUSD          string `json:"amountUSD"`
	AmountAsset        string `json:"amountAsset"`
	AssetSymbol        string `json:"assetSymbol"`
	DestinationAddress string `json:"destinationAddress,omitempty"`
	Status             string `json:"status"`
	CreatedAt          string `json:"createdAt"`
	SettledAt          string `json:"settledAt,omitempty"`
}

// ToTransactionResponse maps a domain transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:      t.TransactionID,
		AccountID:          t.AccountID,
		Kind:               string(t.Kind),
		AmountUSD:          money.ToUSD(t.AmountUSDMinor).StringFixed(2),
		AmountAsset:        t.AmountAsset.String(),
		AssetSymbol:        t.AssetSymbol,
		DestinationAddress: t.DestinationAddress,
		Status:             string(t.Status),
		CreatedAt:          t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.SettledAt != nil {
		resp.SettledAt = t.SettledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// ToTransactionResponses maps a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ListTransactionsParams carries the query parameters of the list endpoint.
type ListTransactionsParams struct {
	Kind   string `form:"kind" binding:"omitempty,oneof=DEPOSIT WITHDRAW"`
	Search string `form:"search"`
	Sort   string `form:"sort" binding:"omitempty,oneof=newest oldest highest lowest"`
}

// ListTransactionsResponse wraps the transaction listing.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// AccountStateResponse is one snapshot delivered on the account stream:
// the current balance plus the full transaction list.
type AccountStateResponse struct {
	Account      AccountResponse       `json:"account"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ToAccountStateResponse maps a domain snapshot to its API representation.
func ToAccountStateResponse(s domain.AccountState) AccountStateResponse {
	return AccountStateResponse{
		Account:      ToAccountResponse(&s.Account),
		Transactions: ToTransactionResponses(s.Transactions),
	}
}
