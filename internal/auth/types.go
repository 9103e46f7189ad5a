package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the decoded token payload. Only the subject is consumed after
// the parser has checked expiry, issuer and audience.
type Claims struct {
	jwt.RegisteredClaims
}

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	JWKSURL  string
}
