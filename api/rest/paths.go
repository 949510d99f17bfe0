package rest

import "fmt"

// Backend endpoint paths, relative to the base URL.
const (
	PathLogin        = "users/login/"
	PathRegister     = "users/register/"
	PathRefreshToken = "users/token/refresh/"
	PathUserData     = "users/get-user-data/"

	PathUpcomingRides  = "rides/fetch-upcoming-rides/"
	PathCreateRide     = "rides/create/"
	PathUserRides      = "rides/get-user-rides/"
	PathRequestHistory = "rides/requests/history/"
)

// PathRideDetails returns the detail endpoint for a ride.
func PathRideDetails(rideID int64) string {
	return fmt.Sprintf("rides/ride-details/%d/", rideID)
}

// PathJoinRide returns the join-request endpoint for a ride.
func PathJoinRide(rideID int64) string {
	return fmt.Sprintf("rides/%d/request/", rideID)
}

// PathRideRequests returns the owner-only listing of a ride's join requests.
func PathRideRequests(rideID int64) string {
	return fmt.Sprintf("rides/%d/requests/", rideID)
}

// PathResolveRequest returns the owner-only accept/reject endpoint.
func PathResolveRequest(rideID, requestID int64, action string) string {
	return fmt.Sprintf("rides/%d/requests/%d/%s/", rideID, requestID, action)
}
