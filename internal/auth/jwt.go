package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoSubject = errors.New("token has no user_id")

func GenerateToken(secret []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseToken verifies tokenString and returns its user id. Expiry is checked
// against now, or the wall clock when now is nil.
func ParseToken(secret []byte, tokenString string, now func() time.Time) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errNoSubject
	}
	uid, ok := data["user_id"].(string)
	if !ok || uid == "" {
		return "", errNoSubject
	}
	return uid, nil
}
