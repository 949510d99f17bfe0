package transport

// LoginRequest exchanges phone+password for a session record.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RideCreateRequest is the payload for creating a ride. Monetary amounts
// travel as numbers; the backend echoes them back as decimal strings.
type RideCreateRequest struct {
	PickupLatitude       float64 `json:"pickup_latitude"`
	PickupLongitude      float64 `json:"pickup_longitude"`
	DestinationLatitude  float64 `json:"destination_latitude"`
	DestinationLongitude float64 `json:"destination_longitude"`
	TotalSeats           int     `json:"total_seats"`
	TotalCost            float64 `json:"total_cost"`
	DepartureDatetime    string  `json:"departure_datetime"`
}
