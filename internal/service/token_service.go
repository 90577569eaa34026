package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/formation-api/internal/models"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

const signingMethod = "HS256"

// TokenConfig configures bearer token issuance.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. A zero TTL means one hour.
func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &TokenService{secret: []byte(cfg.Secret), ttl: cfg.TTL, now: time.Now}
}

// Issue signs a token for the principal.
func (s *TokenService) Issue(principalID string, role models.Role) (string, *models.JWTClaims, error) {
	now := s.now().UTC()
	claims := &models.JWTClaims{
		PrincipalID: principalID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, appErrors.Internal(err, "failed to sign token")
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry. Every failure is reported as
// UNAUTHENTICATED.
func (s *TokenService) Verify(raw string) (*models.JWTClaims, error) {
	if raw == "" {
		return nil, appErrors.ErrUnauthenticated
	}
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		message := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			message = "token expired"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthenticated.Code, appErrors.ErrUnauthenticated.Status, message)
	}
	if !token.Valid || claims.PrincipalID == "" || !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "invalid token")
	}
	return claims, nil
}
