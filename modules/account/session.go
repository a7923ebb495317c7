package account

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the session token is invalid.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned when the session token has expired.
	ErrExpiredToken = errors.New("session token has expired")
)

// SessionConfig holds session token configuration.
type SessionConfig struct {
	SecretKey string
	TTL       time.Duration
	Issuer    string
}

// SessionClaims are the claims carried by a session token. Privileges are not
// part of the token; they are read from the database on every request.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Session is an issued session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionManager issues and validates HS256 session tokens.
type SessionManager struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionManager creates a new SessionManager with the given configuration.
func NewSessionManager(config SessionConfig) *SessionManager {
	return &SessionManager{config: config, now: time.Now}
}

// Issue creates a session token for userID.
func (m *SessionManager) Issue(userID string) (*Session, error) {
	now := m.now()
	expires := now.Add(m.config.TTL)
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires}, nil
}

// Validate parses tokenString and returns its claims if the signature, issuer and
// validity window check out.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	}, jwt.WithIssuer(m.config.Issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
