package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mksolution/account-service/internal/domain/entity"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("insufficient role")
)

// JWTManager issues and verifies the signed bearer tokens handed out at
// login. Tokens carry the user's email as subject and the role used for
// admin gating.
type JWTManager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// Claims is the payload embedded in every access token.
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTManager builds a manager for the given HMAC algorithm
// (HS256, HS384 or HS512).
func NewJWTManager(secret, algorithm string, ttl time.Duration) (*JWTManager, error) {
	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256", "":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &JWTManager{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// Issue signs a token for the given subject/role pair expiring TTL from now.
func (m *JWTManager) Issue(email string, role entity.Role, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	return s, exp, err
}

// Verify parses and validates a token, returning its claims. Bad
// signatures, wrong algorithms, parse failures and expired tokens all
// come back as ErrInvalidToken.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != m.method {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireRole gates role-restricted operations.
func RequireRole(claims *Claims, required entity.Role) error {
	if claims == nil || claims.Role != required {
		return ErrForbidden
	}
	return nil
}
