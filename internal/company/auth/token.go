package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is set on tokens minted by GenerateToken.
const Issuer = "olt-auth"

func GenerateToken(subject string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": Issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
