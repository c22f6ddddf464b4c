package ws

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	errInvalidData = errors.New("invalid message data")
	errUnknownType = errors.New("unknown message type")
)

// IssueMatchToken signs a token that lets its holder present matchID.
func IssueMatchToken(secret, matchID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"match_id": matchID,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseMatchToken validates a match token and returns the match it grants.
func ParseMatchToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	matchID, _ := claims["match_id"].(string)
	if matchID == "" {
		return "", errors.New("token has no match")
	}
	return matchID, nil
}
