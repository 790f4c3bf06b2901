package dto

import (
	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	"github.com/qfsvault/qfs_vault_app/internal/utils/money"
)

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID          string `json:"accountID"`
	BalanceUSD         string `json:"balanceUSD"` // formatted with two fraction digits
	BalanceMinorUnits  int64  `json:"balanceMinorUnits"`
	VerificationStatus string `json:"verificationStatus"`
	CreatedAt          string `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:          a.AccountID,
		BalanceUSD:         money.ToUSD(a.BalanceMinorUnits).StringFixed(2),
		BalanceMinorUnits:  a.BalanceMinorUnits,
		VerificationStatus: string(a.VerificationStatus),
		CreatedAt:          a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// DepositAddressResponse carries the issued deposit address for an asset.
type DepositAddressResponse struct {
	AssetSymbol string `json:"assetSymbol"`
	Address     string `json:"address"`
}
