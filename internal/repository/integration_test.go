//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
	"github.com/noah-isme/formation-api/pkg/cache"
	"github.com/noah-isme/formation-api/pkg/config"
	"github.com/noah-isme/formation-api/pkg/database"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "formations",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := database.NewPostgres(ctx, config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "postgres",
		Name:         "formations",
		SSLMode:      "disable",
		MaxOpenConns: 20,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = database.Migrate(db)
	require.NoError(t, err)
	return db
}

func insertFormation(t *testing.T, db *sqlx.DB, spots int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO formations (id, name, available_spots, start_date, end_date) VALUES ($1, $2, $3, CURRENT_DATE, CURRENT_DATE + 30)`,
		id, "formation-"+id[:8], spots)
	require.NoError(t, err)
	return id
}

func TestIntegrationConcurrentCreateRespectsCapacity(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	principals := repository.NewPrincipalRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	formations := repository.NewFormationRepository(db)

	formationID := insertFormation(t, db, 1)
	const n = 10
	students := make([]string, n)
	for i := range students {
		students[i] = uuid.NewString()
		require.NoError(t, principals.Create(ctx, &models.Student{Account: models.Account{
			ID: students[i], FirstName: "S", LastName: fmt.Sprint(i), Email: fmt.Sprintf("s%d@test.com", i), PasswordHash: "x",
		}}))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			errs <- enrollments.Create(ctx, &models.Enrollment{StudentID: studentID, FormationID: formationID})
		}(id)
	}
	wg.Wait()
	close(errs)

	success, full := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, repository.ErrCapacityExceeded):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, full)

	capacity, err := formations.Capacity(ctx, formationID)
	require.NoError(t, err)
	assert.Equal(t, 1, capacity.ActiveEnrollments)
	assert.Equal(t, 0, capacity.RemainingSpots)
}

func TestIntegrationUniquenessAndTransitions(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	principals := repository.NewPrincipalRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	studentID := uuid.NewString()
	require.NoError(t, principals.Create(ctx, &models.Student{Account: models.Account{ID: studentID, FirstName: "A", LastName: "B", Email: "x@test.com", PasswordHash: "x"}}))
	require.NoError(t, principals.Create(ctx, &models.Admin{Account: models.Account{ID: uuid.NewString(), FirstName: "A", LastName: "B", Email: "x@test.com", PasswordHash: "x"}}))
	err := principals.Create(ctx, &models.Student{Account: models.Account{ID: uuid.NewString(), FirstName: "A", LastName: "B", Email: "x@test.com", PasswordHash: "x"}})
	assert.True(t, errors.Is(err, repository.ErrDuplicateEmail))

	formationID := insertFormation(t, db, 3)
	first := &models.Enrollment{StudentID: studentID, FormationID: formationID}
	require.NoError(t, enrollments.Create(ctx, first))

	_, err = enrollments.TransitionStatus(ctx, first.ID, models.EnrollmentStatusActive, models.EnrollmentStatusCancelled)
	require.NoError(t, err)
	_, err = enrollments.TransitionStatus(ctx, first.ID, models.EnrollmentStatusActive, models.EnrollmentStatusCompleted)
	assert.True(t, errors.Is(err, repository.ErrStatusConflict))

	err = enrollments.Create(ctx, &models.Enrollment{StudentID: studentID, FormationID: formationID})
	assert.True(t, errors.Is(err, repository.ErrDuplicateEnrollment))

	err = enrollments.Create(ctx, &models.Enrollment{StudentID: uuid.NewString(), FormationID: formationID})
	assert.True(t, errors.Is(err, repository.ErrMissingReference))

	audit := repository.NewAuditRepository(db)
	require.NoError(t, audit.Create(ctx, &models.AuditLog{Action: models.AuditActionLogin, Resource: models.AuditResourcePrincipal}))
}

func TestLoginAttemptsAgainstRedis(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := cache.NewRedis(ctx, config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewLoginAttemptRepository(client)
	for i := 1; i <= 3; i++ {
		n, err := repo.RecordFailure(ctx, "x@test.com", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	ttl, err := client.TTL(ctx, "login_attempts:x@test.com").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	n, err := repo.Failures(ctx, "x@test.com")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, repo.Reset(ctx, "x@test.com"))
	n, err = repo.Failures(ctx, "x@test.com")
	require.NoError(t, err)
	assert.Zero(t, n)
}
