package transport

import (
	"github.com/ridepool/client-go/domain"
)

// LoginResponse is the session record returned by the login endpoint.
type LoginResponse struct {
	Access      string `json:"access"`
	Refresh     string `json:"refresh"`
	UserID      int64  `json:"user_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// Session validates the response at the boundary and converts it to the
// domain record. A payload missing either token is rejected rather than
// trusted.
func (r *LoginResponse) Session() (*domain.Session, error) {
	if r == nil || r.Access == "" || r.Refresh == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "login response missing tokens", nil)
	}
	return &domain.Session{
		AccessToken:  r.Access,
		RefreshToken: r.Refresh,
		UserID:       r.UserID,
		FullName:     r.FullName,
		PhoneNumber:  r.PhoneNumber,
	}, nil
}

// RefreshResponse carries the replacement access token.
type RefreshResponse struct {
	Access string `json:"access"`
}

// RegisterResponse is the created account, without tokens.
type RegisterResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// UserRidesResponse groups rides the user owns and rides they were
// accepted into.
type UserRidesResponse struct {
	CreatedRides  []domain.Ride `json:"created_rides"`
	AcceptedRides []domain.Ride `json:"accepted_rides"`
}

// MessageResponse is the generic message/error body used by the ride
// join-request endpoints.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
