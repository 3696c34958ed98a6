package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of issued tokens unless configured otherwise.
const DefaultTokenTTL = 24 * time.Hour

// ErrTokenInvalid is returned for any token that fails verification: bad
// signature, malformed input, wrong algorithm, or expiry.
var ErrTokenInvalid = errors.New("invalid token")

// UserClaim identifies the token owner.
type UserClaim struct {
	ID uint `json:"id"`
}

// Claims represents JWT claims.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed bearer tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and token lifetime.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a signed token for the user.
func (s *JWTService) Issue(userID uint) (string, error) {
	now := s.now()
	claims := &Claims{
		User: UserClaim{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates a token and returns its claims. Every failure yields ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	// jwt/v4 treats a missing exp as valid; tokens without one are never issued here.
	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenInvalid
	}
	if claims.User.ID == 0 {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
