package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/formation-api/internal/dto"
	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
	"github.com/noah-isme/formation-api/pkg/validation"
)

const (
	authOperationRegister = "register"
	authOperationLogin    = "login"
	dateLayout            = "2006-01-02"
)

type principalStore interface {
	FindByEmail(ctx context.Context, role models.Role, email string) (models.Principal, error)
	Create(ctx context.Context, principal models.Principal) error
}

type loginAttemptStore interface {
	Failures(ctx context.Context, email string) (int, error)
	RecordFailure(ctx context.Context, email string, window time.Duration) (int, error)
	Reset(ctx context.Context, email string) error
}

type tokenIssuer interface {
	Issue(principalID string, role models.Role) (string, *models.JWTClaims, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	LoginThrottleEnabled bool
	LoginMaxAttempts     int
	LoginLockoutWindow   time.Duration
}

// AuthService registers principals and logs them in.
type AuthService struct {
	principals principalStore
	attempts   loginAttemptStore
	hasher     *PasswordHasher
	tokens     tokenIssuer
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance. attempts may be nil when
// login throttling is disabled.
func NewAuthService(principals principalStore, attempts loginAttemptStore, hasher *PasswordHasher, tokens tokenIssuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if config.LoginMaxAttempts <= 0 {
		config.LoginMaxAttempts = 5
	}
	if config.LoginLockoutWindow <= 0 {
		config.LoginLockoutWindow = 15 * time.Minute
	}
	return &AuthService{
		principals: principals,
		attempts:   attempts,
		hasher:     hasher,
		tokens:     tokens,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		config:     config,
	}
}

// RegisterStudent creates a student account and logs it in.
func (s *AuthService) RegisterStudent(ctx context.Context, req dto.RegisterStudentRequest) (*models.AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration payload")
	}

	student := &models.Student{
		Account: newAccount(req.FirstName, req.LastName, req.Email),
		Phone:   trimmedOrNil(req.Phone),
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, appErrors.Validation(err, "invalid registration payload")
		}
		student.DateOfBirth = &dob
	}
	return s.register(ctx, student, req.Password)
}

// RegisterInstructor creates an instructor account and logs it in.
func (s *AuthService) RegisterInstructor(ctx context.Context, req dto.RegisterInstructorRequest) (*models.AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration payload")
	}
	instructor := &models.Instructor{
		Account:    newAccount(req.FirstName, req.LastName, req.Email),
		Speciality: trimmedOrNil(req.Speciality),
		Phone:      trimmedOrNil(req.Phone),
	}
	return s.register(ctx, instructor, req.Password)
}

// RegisterAdmin creates an admin account and logs it in.
func (s *AuthService) RegisterAdmin(ctx context.Context, req dto.RegisterAdminRequest) (*models.AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration payload")
	}
	admin := &models.Admin{Account: newAccount(req.FirstName, req.LastName, req.Email)}
	return s.register(ctx, admin, req.Password)
}

func passwordTooLong() *appErrors.Error {
	appErr := appErrors.Clone(appErrors.ErrValidation, "invalid registration payload")
	appErr.Fields = map[string]string{"password": fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	return appErr
}

func (s *AuthService) register(ctx context.Context, principal models.Principal, password string) (*models.AuthResult, error) {
	role := principal.Role()
	acc := principal.Credentials()

	if len(password) > maxPasswordBytes {
		return nil, passwordTooLong()
	}

	if _, err := s.principals.FindByEmail(ctx, role, acc.Email); err == nil {
		s.metrics.RecordAuth(authOperationRegister, string(role), OutcomeFailure)
		return nil, appErrors.ErrDuplicateCredential
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check existing principal")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, passwordTooLong()
		}
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	acc.ID = uuid.NewString()
	acc.PasswordHash = hash

	if err := s.principals.Create(ctx, principal); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.metrics.RecordAuth(authOperationRegister, string(role), OutcomeFailure)
			return nil, appErrors.ErrDuplicateCredential
		}
		return nil, appErrors.Internal(err, "failed to create principal")
	}

	token, _, err := s.tokens.Issue(acc.ID, role)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuth(authOperationRegister, string(role), OutcomeSuccess)
	s.logger.Info("principal registered", zap.String("principal_id", acc.ID), zap.String("role", string(role)), zap.String("email", acc.Email))
	return &models.AuthResult{Token: token, Principal: models.InfoOf(principal)}, nil
}

// Login authenticates by probing the partitions in models.LoginProbeOrder and
// verifying the password of the first match only.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid login payload")
	}

	if s.throttled(ctx, req.Email) {
		s.metrics.RecordAuth(authOperationLogin, "", "throttled")
		return nil, appErrors.ErrTooManyAttempts
	}

	principal, err := s.probe(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to look up principal")
	}
	if principal == nil {
		s.hasher.VerifyDummy(req.Password)
		s.loginFailed(ctx, req.Email, "")
		return nil, appErrors.ErrInvalidCredentials
	}

	acc := principal.Credentials()
	if !s.hasher.Verify(req.Password, acc.PasswordHash) {
		s.loginFailed(ctx, req.Email, principal.Role())
		return nil, appErrors.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(acc.ID, principal.Role())
	if err != nil {
		return nil, err
	}

	if s.config.LoginThrottleEnabled && s.attempts != nil {
		if err := s.attempts.Reset(ctx, req.Email); err != nil {
			s.logger.Warn("failed to reset login attempts", zap.String("email", req.Email), zap.Error(err))
		}
	}
	s.metrics.RecordAuth(authOperationLogin, string(principal.Role()), OutcomeSuccess)
	return &models.AuthResult{Token: token, Principal: models.InfoOf(principal)}, nil
}

// probe returns the first principal holding email, or nil when no partition
// has it.
func (s *AuthService) probe(ctx context.Context, email string) (models.Principal, error) {
	for _, role := range models.LoginProbeOrder {
		principal, err := s.principals.FindByEmail(ctx, role, email)
		if err == nil {
			return principal, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, nil
}

func (s *AuthService) throttled(ctx context.Context, email string) bool {
	if !s.config.LoginThrottleEnabled || s.attempts == nil {
		return false
	}
	failures, err := s.attempts.Failures(ctx, email)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.String("email", email), zap.Error(err))
		return false
	}
	return failures >= s.config.LoginMaxAttempts
}

func (s *AuthService) loginFailed(ctx context.Context, email string, role models.Role) {
	s.metrics.RecordAuth(authOperationLogin, string(role), OutcomeFailure)
	if !s.config.LoginThrottleEnabled || s.attempts == nil {
		return
	}
	if _, err := s.attempts.RecordFailure(ctx, email, s.config.LoginLockoutWindow); err != nil {
		s.logger.Warn("failed to record login failure", zap.String("email", email), zap.Error(err))
	}
}

func newAccount(firstName, lastName, email string) models.Account {
	return models.Account{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
	}
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
