package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"dailyhub/internal/domain"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const issuerName = "dailyhub"

// ErrInvalidToken is returned for any token that fails validation
var ErrInvalidToken = errors.New("invalid session token")

// Issuer signs and validates HS256 session tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer; ttl is the lifetime of every token it mints
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a token bound to userID
func (i *Issuer) Issue(userID int64) (domain.Session, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)

	claims := jwtv5.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwtv5.NewNumericDate(now),
		NotBefore: jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session token: %w", err)
	}

	return domain.Session{
		Token:     signed,
		UserID:    userID,
		ExpiresAt: exp,
	}, nil
}

// Parse validates token and returns the user id it was issued for
func (i *Issuer) Parse(token string) (int64, error) {
	var claims jwtv5.RegisteredClaims
	_, err := jwtv5.ParseWithClaims(token, &claims, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(issuerName),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
