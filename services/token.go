package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token roles.
const (
	RoleHost   = "host"
	RolePlayer = "player"
)

// SessionClaims bind a connection's token to one seat in one session. The
// token is the only identity the server hands out; a client replays it on
// rejoin so the seat cannot be hijacked by guessing a display name.
type SessionClaims struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates per-connection session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

func (m *TokenManager) Issue(gameID, name, role string) (string, error) {
	claims := SessionClaims{
		GameID: gameID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses the token and checks it against the expected seat.
func (m *TokenManager) Validate(tokenString, gameID, name, role string) error {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid session token")
	}
	if claims.GameID != gameID || claims.Name != name || claims.Role != role {
		return fmt.Errorf("session token does not match this seat")
	}
	return nil
}
