package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrNoSecret     = errors.New("admin token secret is not configured")
)

// adminClaims are the claims carried by an admin bearer token
type adminClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 admin bearer tokens
type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

// NewJWTValidator creates a validator for tokens signed with secret
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// IssueToken signs an admin token for subject valid for ttl
func (v *JWTValidator) IssueToken(subject, email string, roles []string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := v.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}

// ValidateToken validates a token and returns the admin context it carries
func (v *JWTValidator) ValidateToken(tokenString string) (*AdminContext, error) {
	if len(v.secret) == 0 {
		return nil, ErrNoSecret
	}

	claims := &adminClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &AdminContext{
		Subject: subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
		Method:  MethodJWT,
	}, nil
}
