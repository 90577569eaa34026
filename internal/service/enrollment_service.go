package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

const (
	enrollmentOpCreate = "create"
	enrollmentOpUpdate = "update_status"
	enrollmentOpDelete = "delete"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Exists(ctx context.Context, studentID, formationID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	TransitionStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) (*models.Enrollment, error)
	Delete(ctx context.Context, id string) error
}

type formationCapacityReader interface {
	Capacity(ctx context.Context, id string) (*models.FormationCapacity, error)
}

// EnrollmentService owns the enrollment lifecycle. Creates for the same
// formation are serialised in-process; the store serialises them again
// across processes.
type EnrollmentService struct {
	repo       enrollmentRepository
	formations formationCapacityReader
	principals principalFinder
	locks      *keyedMutex
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, formations formationCapacityReader, principals principalFinder, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:       repo,
		formations: formations,
		principals: principals,
		locks:      newKeyedMutex(),
		metrics:    metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create enrolls a student. Admins may enroll anyone; students only
// themselves.
func (s *EnrollmentService) Create(ctx context.Context, actor models.Actor, studentID, formationID string) (enrollment *models.Enrollment, err error) {
	defer func() { s.record(enrollmentOpCreate, err) }()

	switch {
	case actor.Role == models.RoleAdmin:
		if _, err := s.principals.FindByID(ctx, models.RoleStudent, studentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Internal(err, "failed to load student")
		}
	case actor.Role == models.RoleStudent && actor.ID == studentID:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only enroll themselves")
	}

	unlock := s.locks.Lock(formationID)
	defer unlock()

	exists, err := s.repo.Exists(ctx, studentID, formationID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.ErrDuplicateEnrollment
	}

	capacity, err := s.formations.Capacity(ctx, formationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "formation not found")
		}
		return nil, appErrors.Internal(err, "failed to load formation capacity")
	}
	if capacity.ActiveEnrollments >= capacity.AvailableSpots {
		return nil, appErrors.ErrCapacityExceeded
	}

	enrollment = &models.Enrollment{
		StudentID:      studentID,
		FormationID:    formationID,
		EnrollmentDate: s.now(),
		Status:         models.EnrollmentStatusActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, translateEnrollmentError(err, "failed to create enrollment")
	}

	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("student_id", studentID),
		zap.String("formation_id", formationID),
		zap.String("actor_id", actor.ID))
	return enrollment, nil
}

// UpdateStatus moves an ACTIVE enrollment to COMPLETED or CANCELLED. Admin
// only.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, actor models.Actor, id string, status models.EnrollmentStatus) (updated *models.Enrollment, err error) {
	defer func() { s.record(enrollmentOpUpdate, err) }()

	if actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins may change enrollment status")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move enrollment from "+string(current.Status)+" to "+string(status))
	}

	updated, err = s.repo.TransitionStatus(ctx, id, current.Status, status)
	if err != nil {
		return nil, translateEnrollmentError(err, "failed to update enrollment")
	}
	return updated, nil
}

// Delete removes an enrollment. Admins may delete any; students only their
// own.
func (s *EnrollmentService) Delete(ctx context.Context, actor models.Actor, id string) (err error) {
	defer func() { s.record(enrollmentOpDelete, err) }()

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(actor, current.StudentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete another student's enrollment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateEnrollmentError(err, "failed to delete enrollment")
	}
	s.logger.Info("enrollment deleted", zap.String("enrollment_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// ListByStudent returns a student's enrollments to the student or an admin.
func (s *EnrollmentService) ListByStudent(ctx context.Context, actor models.Actor, studentID string) ([]models.Enrollment, error) {
	if !canAccess(actor, studentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot list another student's enrollments")
	}
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// Get returns one enrollment to its student or an admin.
func (s *EnrollmentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, enrollment.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another student's enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) load(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) record(operation string, err error) {
	if err == nil {
		s.metrics.RecordEnrollment(operation, OutcomeSuccess)
		return
	}
	s.metrics.RecordEnrollment(operation, appErrors.FromError(err).Code)
}

// canAccess admits admins and the student the resource belongs to.
func canAccess(actor models.Actor, studentID string) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleStudent && actor.ID == studentID
}

func translateEnrollmentError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEnrollment):
		return appErrors.ErrDuplicateEnrollment
	case errors.Is(err, repository.ErrCapacityExceeded):
		return appErrors.ErrCapacityExceeded
	case errors.Is(err, repository.ErrStatusConflict):
		return appErrors.Clone(appErrors.ErrInvalidTransition, "enrollment is no longer active")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment or formation not found")
	case errors.Is(err, repository.ErrMissingReference):
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	default:
		return appErrors.Internal(err, message)
	}
}
