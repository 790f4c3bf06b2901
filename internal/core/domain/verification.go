package domain

import "time"

// Verification is the identity payload submitted for an account.
// The payload is stored opaquely; no real document verification happens here.
type Verification struct {
	VerificationID string    `json:"verificationID"`
	AccountID      string    `json:"accountID"`
	FullName       string    `json:"fullName"`
	DateOfBirth    string    `json:"dateOfBirth"`
	SSN            string    `json:"ssn"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Zip            string    `json:"zip"`
	LicenseFront   string    `json:"licenseFront"` // base64 image payload
	LicenseBack    string    `json:"licenseBack"`
	SubmittedAt    time.Time `json:"submittedAt"`
}
