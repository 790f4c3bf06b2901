package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
)

func TestTransaction_BalanceDelta(t *testing.T) {
	tests := []struct {
		name        string
		transaction domain.Transaction
		want        int64
	}{
		{
			name: "deposit credits the balance",
			transaction: domain.Transaction{
				Kind:           domain.Deposit,
				AmountUSDMinor: 50000,
			},
			want: 50000,
		},
		{
			name: "withdrawal debits the balance",
			transaction: domain.Transaction{
				Kind:           domain.Withdraw,
				AmountUSDMinor: 20000,
			},
			want: -20000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transaction.BalanceDelta())
		})
	}
}

func TestAccount_MayWithdraw(t *testing.T) {
	notSubmitted := domain.Account{VerificationStatus: domain.VerificationNotSubmitted}
	submitted := domain.Account{VerificationStatus: domain.VerificationSubmitted}

	assert.False(t, notSubmitted.MayWithdraw())
	assert.True(t, submitted.MayWithdraw())
}
