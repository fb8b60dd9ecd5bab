// Package auth turns bearer credentials into ledger owners.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the registered JWT claims plus the owner the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
	Owner string `json:"owner"`
}

// GenerateToken signs an HS256 token for owner that expires after validityDuration.
func GenerateToken(owner string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Owner: owner,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseOwner verifies tokenString and returns the owner it carries.
// Expired tokens yield common.ErrTokenExpired; any other defect yields
// common.ErrInvalidToken.
func ParseOwner(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Owner == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Owner, nil
}
