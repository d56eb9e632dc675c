package model

const (
	ProviderOTP    = "otp"
	ProviderGoogle = "google"
)

// User is keyed by normalized lowercase email; Provider records how the
// account was first established, LastProvider the most recent login method.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name,omitempty"`
	DateOfBirth  string `json:"dob,omitempty"`
	Provider     string `json:"provider"`
	LastProvider string `json:"last_provider,omitempty"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
