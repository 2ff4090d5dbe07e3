package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vantagecrm/api/internal/authz"
)

// Claims carried by the access token. Role is embedded so the policy layer
// never has to look the user up again.
type Claims struct {
	UserID uint       `json:"userId"`
	Role   authz.Role `json:"role"`
	jwt.RegisteredClaims
}

var (
	signingKey []byte
	accessTTL  = 15 * time.Minute
)

// Configure sets the HS256 signing key and token lifetime. Must be called
// once at startup before any token is issued or parsed.
func Configure(secret string, ttl time.Duration) {
	signingKey = []byte(secret)
	if ttl > 0 {
		accessTTL = ttl
	}
}

// GenerateAccessToken issues an HS256 JWT for the given user.
func GenerateAccessToken(userID uint, role authz.Role) (string, error) {
	if len(signingKey) == 0 {
		return "", errors.New("auth: signing key not configured")
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// ParseAndValidate verifies signature and expiry and returns the claims.
func ParseAndValidate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("unknown role")
	}
	return claims, nil
}
