package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository/memory"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

type failingFinder struct{}

func (failingFinder) FindByID(context.Context, models.Role, string) (models.Principal, error) {
	return nil, errors.New("connection refused")
}

func TestAccessGuardAuthenticatesLivePrincipal(t *testing.T) {
	store := memory.New()
	seedStudent(t, store, "s-5")
	tokens := newTestTokens(time.Now())
	guard := NewAccessGuard(tokens, store.Principals(), nil)

	raw, _, err := tokens.Issue("s-5", models.RoleStudent)
	require.NoError(t, err)

	claims, principal, err := guard.Authenticate(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "s-5", claims.PrincipalID)
	assert.Equal(t, models.RoleStudent, principal.Role())
}

func TestAccessGuardRejectsStalePrincipal(t *testing.T) {
	store := memory.New()
	seedStudent(t, store, "s-5")
	tokens := newTestTokens(time.Now())
	guard := NewAccessGuard(tokens, store.Principals(), nil)

	raw, _, err := tokens.Issue("s-5", models.RoleStudent)
	require.NoError(t, err)
	store.Principals().Remove(models.RoleStudent, "s-5")

	_, _, err = guard.Authenticate(context.Background(), raw)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestAccessGuardResolvesInTokenPartitionOnly(t *testing.T) {
	store := memory.New()
	seedStudent(t, store, "shared-id")
	tokens := newTestTokens(time.Now())
	guard := NewAccessGuard(tokens, store.Principals(), nil)

	// the id exists as a student, not as an admin
	raw, _, err := tokens.Issue("shared-id", models.RoleAdmin)
	require.NoError(t, err)

	_, _, err = guard.Authenticate(context.Background(), raw)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestAccessGuardStoreFailureIsInternal(t *testing.T) {
	tokens := newTestTokens(time.Now())
	guard := NewAccessGuard(tokens, failingFinder{}, nil)
	raw, _, err := tokens.Issue("s-1", models.RoleStudent)
	require.NoError(t, err)

	_, _, err = guard.Authenticate(context.Background(), raw)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestAccessGuardMissingToken(t *testing.T) {
	guard := NewAccessGuard(newTestTokens(time.Now()), memory.New().Principals(), nil)
	_, _, err := guard.Authenticate(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthenticated))
}

func TestAccessGuardAuthorize(t *testing.T) {
	guard := NewAccessGuard(nil, nil, nil)
	student := &models.JWTClaims{PrincipalID: "s-1", Role: models.RoleStudent}

	assert.NoError(t, guard.Authorize(student, models.RoleStudent, models.RoleAdmin))
	assert.True(t, errors.Is(guard.Authorize(student, models.RoleAdmin), appErrors.ErrForbidden))
	assert.True(t, errors.Is(guard.Authorize(nil, models.RoleAdmin), appErrors.ErrUnauthenticated))
}
