package domain

// VerificationStatus tracks the one-way identity verification state machine.
// An account is created NOT_SUBMITTED and transitions at most once to
// SUBMITTED; it never reverts.
type VerificationStatus string

const (
	VerificationNotSubmitted VerificationStatus = "NOT_SUBMITTED"
	VerificationSubmitted    VerificationStatus = "SUBMITTED"
)

// Account represents a custodial account holding a USD balance.
// The balance is kept in minor units (cents) to avoid floating-point drift.
type Account struct {
	AccountID          string             `json:"accountID"`
	BalanceMinorUnits  int64              `json:"balanceMinorUnits"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	AuditFields
}

// MayWithdraw reports whether withdrawals are allowed to be created for this
// account. It is a derived read with no side effects.
func (a Account) MayWithdraw() bool {
	return a.VerificationStatus == VerificationSubmitted
}
