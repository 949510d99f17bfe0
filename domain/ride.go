package domain

import "time"

// RideStatus is the backend's lifecycle state for a ride.
type RideStatus string

const (
	RideUpcoming  RideStatus = "UPCOMING"
	RideOngoing   RideStatus = "ONGOING"
	RideCompleted RideStatus = "COMPLETED"
	RideAborted   RideStatus = "ABORTED"
)

// RequestStatus is the state of a join request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// Ride mirrors the ride payload served by the backend. The viewer-dependent
// fields (IsUserOwner, Requested, RequestedStatus) are computed server-side
// from the bearer token attached to the request.
type Ride struct {
	ID                   int64      `json:"id"`
	Owner                User       `json:"owner"`
	Participants         []User     `json:"participants"`
	PickupLatitude       float64    `json:"pickup_latitude"`
	PickupLongitude      float64    `json:"pickup_longitude"`
	DestinationLatitude  float64    `json:"destination_latitude"`
	DestinationLongitude float64    `json:"destination_longitude"`
	TotalSeats           int        `json:"total_seats"`
	SeatsAvailable       int        `json:"seats_available"`
	TotalCost            string     `json:"total_cost"`
	CostPerSeat          string     `json:"cost_per_seat"`
	Status               RideStatus `json:"status"`
	DepartureDatetime    time.Time  `json:"departure_datetime"`
	CreatedAt            time.Time  `json:"created_at"`

	IsUserOwner     bool           `json:"is_user_owner"`
	Requested       bool           `json:"requested"`
	RequestedStatus *RequestStatus `json:"requested_status"`

	// Populated on the detail endpoint, and only for the ride owner.
	JoinRequests []JoinRequest `json:"join_requests,omitempty"`
}

// HasSeats reports whether the ride still accepts passengers.
func (r *Ride) HasSeats() bool {
	return r != nil && r.SeatsAvailable > 0
}

// JoinRequest is a pending/resolved request by a user to join a ride.
type JoinRequest struct {
	ID              int64         `json:"id"`
	RideID          int64         `json:"ride"`
	UserID          int64         `json:"user"`
	UserFullName    string        `json:"user_full_name"`
	UserPhoneNumber string        `json:"user_phone_number"`
	Status          RequestStatus `json:"status"`
	RequestedAt     time.Time     `json:"requested_at"`
}

// JoinRequestWithRide is the requests-history shape: the request plus the
// full ride it targets.
type JoinRequestWithRide struct {
	ID          int64         `json:"id"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
	Ride        Ride          `json:"ride"`
}
