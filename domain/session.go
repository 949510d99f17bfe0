package domain

// Session is the single persisted authentication record. The backend returns
// it from login/register, and the access token is replaced in place on every
// silent refresh. JSON field names follow the backend payload so the record
// can be stored exactly as received.
type Session struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	UserID       int64  `json:"user_id,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// Complete reports whether the record carries both tokens. A record missing
// either token is treated the same as no record at all.
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// WithAccessToken returns a copy of the session with a replacement access
// token, keeping the refresh token and profile fields intact.
func (s Session) WithAccessToken(token string) Session {
	s.AccessToken = token
	return s
}
