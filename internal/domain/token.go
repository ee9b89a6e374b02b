package domain

import "time"

// TokenClaims represents the identity carried by a bearer token
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
}

// ExpiredAt checks the validity window against now
func (tc TokenClaims) ExpiredAt(now time.Time) bool {
	return now.Unix() > tc.Exp
}
