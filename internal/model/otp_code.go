package model

// OtpCode is the single pending one-time code for an email address. Saving a
// new code for the same email replaces the prior one.
type OtpCode struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CodeHash  string `json:"code_hash"`
	Attempts  int    `json:"attempts"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}
