package domain

// AccountState is the read-model snapshot fanned out to stream subscribers:
// the account (balance, verification status) plus its transaction history,
// newest first.
type AccountState struct {
	Account      Account
	Transactions []Transaction
}
