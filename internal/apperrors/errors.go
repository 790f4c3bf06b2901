package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a withdrawal amount exceeds the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrVerificationRequired indicates that a withdrawal is blocked until identity
// verification has been submitted for the account.
var ErrVerificationRequired = errors.New("identity verification required")

// ErrConflict indicates a concurrent state transition lost the race,
// e.g. two attempts to settle the same pending transaction.
var ErrConflict = errors.New("conflicting state transition")
