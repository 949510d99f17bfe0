package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/ridepool/client-go/domain"
)

// Claims is the transient view of an access token's payload. Only expiry is
// used; the signature is never verified here — freshness is a client-side
// hint and the backend remains the authority.
type Claims struct {
	ExpiresAt time.Time
	UserID    int64
}

// Decode extracts claims from a compact three-segment token without
// verifying its signature. Any structural problem (wrong segment count, bad
// base64, bad JSON, missing exp) yields domain.ErrMalformedToken.
func Decode(raw string) (*Claims, error) {
	if strings.Count(raw, ".") != 2 {
		return nil, domain.ErrMalformedToken
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "decode access token", err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, domain.ErrMalformedToken
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrMalformedToken
	}

	claims := &Claims{ExpiresAt: exp.Time}
	if id, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(id)
	}
	return claims, nil
}

// Expired reports whether the claims are stale at the reference instant.
// Comparison is at second precision, matching the exp claim itself.
func (c *Claims) Expired(reference time.Time) bool {
	if c == nil {
		return true
	}
	return c.ExpiresAt.Unix() < reference.Unix()
}
