package apiclient

import (
	"net/url"
	"strings"
)

// Paths of the external caravan API.
const (
	PathCurrentUser      = "/api/users/me"
	PathAuthToken        = "/api/auth/token"
	PathGoogleAuthURL    = "/api/auth/url/google"
	PathCaravans         = "/api/caravans"
	PathPointsOfInterest = "/api/points-of-interest"
	PathReservations     = "/api/reservations"
	PathMyReservations   = "/api/users/me/reservations"
)

// CaravanPath returns /api/caravans/{id} with id path-escaped.
func CaravanPath(id string) string {
	return PathCaravans + "/" + url.PathEscape(strings.TrimSpace(id))
}
