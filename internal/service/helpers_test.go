package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository/memory"
)

const testSecret = "test-secret"

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

func newTestTokens(now time.Time) *TokenService {
	tokens := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour})
	tokens.now = func() time.Time { return now }
	return tokens
}

func seedStudent(t *testing.T, store *memory.Store, id string) *models.Student {
	t.Helper()
	student := &models.Student{Account: models.Account{ID: id, FirstName: "S", LastName: id, Email: id + "@test.com"}}
	require.NoError(t, store.Principals().Create(context.Background(), student))
	return student
}

func seedFormation(store *memory.Store, spots int) models.Formation {
	start := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	return store.Formations().Add(models.Formation{
		Name:           "Formation",
		AvailableSpots: spots,
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
	})
}

func studentActor(id string) models.Actor { return models.Actor{ID: id, Role: models.RoleStudent} }

func adminActor() models.Actor { return models.Actor{ID: "admin-1", Role: models.RoleAdmin} }
