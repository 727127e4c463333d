package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long issued tokens stay valid.
const TokenTTL = 24 * time.Hour

// GenerateToken issues an HS256 token carrying only the user id. The secret
// comes from configuration, never from source.
func GenerateToken(userID int64, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(TokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// VerifyToken checks signature and expiry and returns the embedded user id.
func VerifyToken(tokenStr, secret string) (int64, error) {
	parsed, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !parsed.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	raw, ok := claims["userId"].(float64)
	if !ok {
		return 0, errors.New("token missing user id")
	}
	return int64(raw), nil
}
