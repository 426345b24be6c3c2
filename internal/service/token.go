package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes what can be read from a bearer token without its signing key.
type TokenInfo struct {
	IsJWT     bool
	Subject   string
	ExpiresAt time.Time
	Expired   bool
}

// InspectToken reads JWT claims without verifying the signature. The API owns
// verification; the client only uses the claims for display and warnings.
// Opaque tokens yield IsJWT=false.
func InspectToken(token string, now time.Time) TokenInfo {
	token = strings.TrimSpace(token)
	if token == "" {
		return TokenInfo{}
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{IsJWT: true}
	if sub, subErr := parsed.Claims.GetSubject(); subErr == nil {
		info.Subject = sub
	}
	if exp, expErr := parsed.Claims.GetExpirationTime(); expErr == nil && exp != nil {
		info.ExpiresAt = exp.Time
		info.Expired = !now.Before(exp.Time)
	}
	return info
}
