package domain

// User is the profile record returned by the backend. Accounts are keyed by
// phone number rather than email.
type User struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}
