package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/formation-api/internal/models"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

type principalFinder interface {
	FindByID(ctx context.Context, role models.Role, id string) (models.Principal, error)
}

type tokenVerifier interface {
	Verify(raw string) (*models.JWTClaims, error)
}

// AccessGuard authenticates bearer tokens against live principal records and
// performs coarse role checks.
type AccessGuard struct {
	tokens     tokenVerifier
	principals principalFinder
	logger     *zap.Logger
}

// NewAccessGuard constructs an AccessGuard.
func NewAccessGuard(tokens tokenVerifier, principals principalFinder, logger *zap.Logger) *AccessGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGuard{tokens: tokens, principals: principals, logger: logger}
}

// Authenticate verifies the token and re-resolves the principal from the
// partition named by its role. A principal deleted since issuance is treated
// as unauthenticated.
func (g *AccessGuard) Authenticate(ctx context.Context, rawToken string) (*models.JWTClaims, models.Principal, error) {
	claims, err := g.tokens.Verify(rawToken)
	if err != nil {
		return nil, nil, err
	}

	principal, err := g.principals.FindByID(ctx, claims.Role, claims.PrincipalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			g.logger.Info("token for missing principal", zap.String("principal_id", claims.PrincipalID), zap.String("role", string(claims.Role)))
			return nil, nil, appErrors.Clone(appErrors.ErrUnauthenticated, "principal no longer exists")
		}
		return nil, nil, appErrors.Internal(err, "failed to resolve principal")
	}
	return claims, principal, nil
}

// Authorize fails with FORBIDDEN when the caller's role is not allowed.
func (g *AccessGuard) Authorize(claims *models.JWTClaims, allowed ...models.Role) error {
	if claims == nil {
		return appErrors.ErrUnauthenticated
	}
	for _, role := range allowed {
		if claims.Role == role {
			return nil
		}
	}
	return appErrors.ErrForbidden
}
