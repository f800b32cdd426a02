package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"

	"travellocal/config"

	"github.com/golang-jwt/jwt"
)

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string against JWT_SECRET.
func ValidateToken(tokenString string, secret []byte) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ParseToken returns the token subject and whether the signature was checked.
// Tokens are issued by the upstream backend; when JWT_SECRET is empty the
// claims are read without checking the signature and verified is false.
func ParseToken(tokenString string) (userID string, verified bool, err error) {
	claims := jwt.MapClaims{}
	if secret := config.AppConfig.JWTSecret; secret != "" {
		token, err := ValidateToken(tokenString, []byte(secret))
		if err != nil {
			return "", false, err
		}
		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return "", false, errors.New("invalid token")
		}
		claims = mc
		verified = true
	} else {
		if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
			return "", false, err
		}
		if err := claims.Valid(); err != nil {
			return "", false, err
		}
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub != "" {
			return sub, verified, nil
		}
	case float64:
		return formatNumericID(sub), verified, nil
	}
	return "", false, errors.New("token does not contain a valid 'sub' claim")
}

func formatNumericID(id float64) string {
	return strconv.FormatFloat(id, 'f', -1, 64)
}
