package oauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidState is returned when a callback state token fails
// signature or expiry checks. No token exchange is attempted after it.
var ErrInvalidState = errors.New("Invalid state signature")

const defaultStateTTL = 15 * time.Minute

// StateClaims is the payload of the signed OAuth state parameter.
type StateClaims struct {
	UserId      uint   `json:"user_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
	jwt.RegisteredClaims
}

// StateSigner mints and verifies HMAC-SHA256 signed state tokens so the
// callback can trust user identity without server-side session storage.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl == 0 {
		ttl = defaultStateTTL
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl}
}

// Sign produces a state token binding the connect request to a user.
func (s *StateSigner) Sign(userId uint, redirectURL string) (string, error) {
	now := time.Now()
	claims := StateClaims{
		UserId:      userId,
		RedirectURL: redirectURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a state token. Any failure (bad signature,
// expired, malformed) collapses to ErrInvalidState.
func (s *StateSigner) Verify(state string) (*StateClaims, error) {
	claims := &StateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidState
	}
	return claims, nil
}
