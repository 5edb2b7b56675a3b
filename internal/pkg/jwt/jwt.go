// Package jwt issues and validates the access tokens attached to signed-in
// shoppers. Guests carry no token; they are identified by a client-generated
// guest id instead.
package jwt

import (
	"time"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errs.New("invalid or expired token")
)

type Manager struct {
	secret   []byte
	duration time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	duration, err := time.ParseDuration(cfg.Duration)
	if err != nil {
		return nil, errs.Wrap(err, "invalid jwt duration")
	}
	return &Manager{
		secret:   []byte(cfg.Secret),
		duration: duration,
	}, nil
}

func (m *Manager) Generate(userID uuid.UUID, now time.Time) (string, error) {
	claims := jwtlib.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(now.Add(m.duration)),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errs.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

func (m *Manager) Validate(tokenString string) (uuid.UUID, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &jwtlib.RegisteredClaims{},
		func(t *jwtlib.Token) (any, error) {
			if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return m.secret, nil
		},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtlib.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
