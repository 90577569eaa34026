package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository/memory"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

func newEnrollmentFixture(t *testing.T, spots int, students ...string) (*EnrollmentService, *memory.Store, models.Formation) {
	t.Helper()
	store := memory.New()
	for _, id := range students {
		seedStudent(t, store, id)
	}
	formation := seedFormation(store, spots)
	svc := NewEnrollmentService(store.Enrollments(), store.Formations(), store.Principals(), nil, nil)
	return svc, store, formation
}

func TestEnrollmentCreateByStudentForSelf(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-5")

	enrollment, err := svc.Create(context.Background(), studentActor("s-5"), "s-5", formation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, "s-5", enrollment.StudentID)
	assert.False(t, enrollment.EnrollmentDate.IsZero())
}

func TestEnrollmentCreateRejectsOtherCallers(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-5", "s-6")
	ctx := context.Background()

	_, err := svc.Create(ctx, studentActor("s-5"), "s-6", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, models.Actor{ID: "i-1", Role: models.RoleInstructor}, "s-6", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestEnrollmentCreateByAdminRequiresStudent(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-5")
	ctx := context.Background()

	_, err := svc.Create(ctx, adminActor(), "ghost", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	enrollment, err := svc.Create(ctx, adminActor(), "s-5", formation.ID)
	require.NoError(t, err)
	assert.Equal(t, "s-5", enrollment.StudentID)
}

func TestEnrollmentCreateCheckOrder(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 1, "s-1", "s-2")
	ctx := context.Background()

	_, err := svc.Create(ctx, studentActor("s-1"), "s-1", "missing-formation")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Create(ctx, studentActor("s-1"), "s-1", formation.ID)
	require.NoError(t, err)

	// duplicate is reported before capacity even though the formation is full
	_, err = svc.Create(ctx, studentActor("s-1"), "s-1", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateEnrollment))

	_, err = svc.Create(ctx, studentActor("s-2"), "s-2", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollmentUniquenessRegardlessOfStatus(t *testing.T) {
	for _, status := range []models.EnrollmentStatus{models.EnrollmentStatusActive, models.EnrollmentStatusCompleted, models.EnrollmentStatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			svc, _, formation := newEnrollmentFixture(t, 3, "s-1")
			ctx := context.Background()

			first, err := svc.Create(ctx, studentActor("s-1"), "s-1", formation.ID)
			require.NoError(t, err)
			if status != models.EnrollmentStatusActive {
				_, err = svc.UpdateStatus(ctx, adminActor(), first.ID, status)
				require.NoError(t, err)
			}

			_, err = svc.Create(ctx, studentActor("s-1"), "s-1", formation.ID)
			assert.True(t, errors.Is(err, appErrors.ErrDuplicateEnrollment))
		})
	}
}

func TestEnrollmentScenarioDeleteFreesSeat(t *testing.T) {
	svc, store, formation := newEnrollmentFixture(t, 1, "s-a", "s-b")
	ctx := context.Background()

	a, err := svc.Create(ctx, studentActor("s-a"), "s-a", formation.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, studentActor("s-b"), "s-b", formation.ID)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))

	require.NoError(t, svc.Delete(ctx, studentActor("s-a"), a.ID))

	_, err = svc.Create(ctx, studentActor("s-b"), "s-b", formation.ID)
	require.NoError(t, err)

	capacity, err := store.Formations().Capacity(ctx, formation.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, capacity.RemainingSpots)
}

func TestEnrollmentCancelledRowFreesSeat(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 1, "s-a", "s-b")
	ctx := context.Background()

	a, err := svc.Create(ctx, studentActor("s-a"), "s-a", formation.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, adminActor(), a.ID, models.EnrollmentStatusCancelled)
	require.NoError(t, err)

	_, err = svc.Create(ctx, studentActor("s-b"), "s-b", formation.ID)
	assert.NoError(t, err)
}

func TestEnrollmentDeleteAuthorization(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-5", "s-6")
	ctx := context.Background()

	owned, err := svc.Create(ctx, studentActor("s-6"), "s-6", formation.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, studentActor("s-5"), owned.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = svc.Delete(ctx, models.Actor{ID: "i-1", Role: models.RoleInstructor}, owned.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, adminActor(), owned.ID))

	err = svc.Delete(ctx, adminActor(), owned.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentUpdateStatus(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-1")
	ctx := context.Background()
	enrollment, err := svc.Create(ctx, studentActor("s-1"), "s-1", formation.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, studentActor("s-1"), enrollment.ID, models.EnrollmentStatusCompleted)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.UpdateStatus(ctx, adminActor(), enrollment.ID, models.EnrollmentStatusActive)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.UpdateStatus(ctx, adminActor(), enrollment.ID, "PAUSED")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	updated, err := svc.UpdateStatus(ctx, adminActor(), enrollment.ID, models.EnrollmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, updated.Status)

	_, err = svc.UpdateStatus(ctx, adminActor(), enrollment.ID, models.EnrollmentStatusCancelled)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.UpdateStatus(ctx, adminActor(), "missing", models.EnrollmentStatusCancelled)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentListAndGetScopedToOwner(t *testing.T) {
	svc, _, formation := newEnrollmentFixture(t, 2, "s-5", "s-6")
	ctx := context.Background()
	enrollment, err := svc.Create(ctx, studentActor("s-5"), "s-5", formation.ID)
	require.NoError(t, err)

	list, err := svc.ListByStudent(ctx, studentActor("s-5"), "s-5")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByStudent(ctx, studentActor("s-6"), "s-5")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	list, err = svc.ListByStudent(ctx, adminActor(), "s-6")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.Get(ctx, studentActor("s-5"), enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.ID, got.ID)

	_, err = svc.Get(ctx, studentActor("s-6"), enrollment.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestEnrollmentConcurrentCreatesAgainstAtomicStore(t *testing.T) {
	const n = 16
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s-%02d", i)
	}
	svc, store, formation := newEnrollmentFixture(t, 1, ids...)

	success, full := runConcurrentCreates(t, svc, formation.ID, ids)
	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, full)

	capacity, err := store.Formations().Capacity(context.Background(), formation.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, capacity.ActiveEnrollments)
}

// naiveStore performs each read and write atomically but never combines the
// capacity check with the insert. Only the service's per-formation lock keeps
// it from overbooking.
type naiveStore struct {
	mu          sync.Mutex
	spots       int
	enrollments []models.Enrollment
}

func (s *naiveStore) FindByID(context.Context, string) (*models.Enrollment, error) {
	return nil, sql.ErrNoRows
}

func (s *naiveStore) ListByStudent(context.Context, string) ([]models.Enrollment, error) {
	return nil, nil
}

func (s *naiveStore) Exists(_ context.Context, studentID, formationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.FormationID == formationID {
			return true, nil
		}
	}
	return false, nil
}

func (s *naiveStore) Capacity(_ context.Context, id string) (*models.FormationCapacity, error) {
	s.mu.Lock()
	active := len(s.enrollments)
	s.mu.Unlock()
	// widen the window between the seat check and the insert
	time.Sleep(2 * time.Millisecond)
	return &models.FormationCapacity{
		Formation:         models.Formation{ID: id, AvailableSpots: s.spots},
		ActiveEnrollments: active,
	}, nil
}

func (s *naiveStore) Create(_ context.Context, e *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = fmt.Sprintf("e-%d", len(s.enrollments)+1)
	s.enrollments = append(s.enrollments, *e)
	return nil
}

func (s *naiveStore) TransitionStatus(context.Context, string, models.EnrollmentStatus, models.EnrollmentStatus) (*models.Enrollment, error) {
	return nil, sql.ErrNoRows
}

func (s *naiveStore) Delete(context.Context, string) error { return nil }

func TestEnrollmentServiceLockPreventsOverbooking(t *testing.T) {
	const n = 12
	store := &naiveStore{spots: 1}
	svc := NewEnrollmentService(store, store, nil, nil, nil)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("s-%02d", i)
	}

	success, full := runConcurrentCreates(t, svc, "f-1", ids)
	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, full)
	assert.Len(t, store.enrollments, 1)
	assert.Zero(t, svc.locks.size())
}

func runConcurrentCreates(t *testing.T, svc *EnrollmentService, formationID string, students []string) (success, full int) {
	t.Helper()
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, len(students))
	for _, id := range students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			<-start
			_, err := svc.Create(context.Background(), studentActor(studentID), studentID, formationID)
			errs <- err
		}(id)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, appErrors.ErrCapacityExceeded):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	return success, full
}

func TestKeyedMutexSerialisesPerKey(t *testing.T) {
	locks := newKeyedMutex()
	unlockA := locks.Lock("a")

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("a")
		close(acquired)
		unlock()
	}()

	// other keys are not blocked
	unlockB := locks.Lock("b")
	unlockB()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}
	unlockA()
	<-acquired
	require.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, time.Millisecond)
}
