package dto

import "github.com/qfsvault/qfs_vault_app/internal/core/domain"

// SubmitVerificationRequest is the identity payload for the verification gate.
// Every field is required; the gate rejects partial submissions before any
// state change.
type SubmitVerificationRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required"`
	SSN          string `json:"ssn" binding:"required"`
	Address      string `json:"address" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Zip          string `json:"zip" binding:"required"`
	LicenseFront string `json:"licenseFront" binding:"required"`
	LicenseBack  string `json:"licenseBack" binding:"required"`
}

// VerificationResponse is returned after a successful submission.
type VerificationResponse struct {
	VerificationID string `json:"verificationID"`
	AccountID      string `json:"accountID"`
	Status         string `json:"status"`
	SubmittedAt    string `json:"submittedAt"`
}

// ToVerificationResponse maps a submitted verification to its API shape.
func ToVerificationResponse(v *domain.Verification) VerificationResponse {
	return VerificationResponse{
		VerificationID: v.VerificationID,
		AccountID:      v.AccountID,
		Status:         string(domain.VerificationSubmitted),
		SubmittedAt:    v.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
