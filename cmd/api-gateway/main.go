package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/formation-api/api/swagger"
	"github.com/noah-isme/formation-api/internal/handler"
	internalmiddleware "github.com/noah-isme/formation-api/internal/middleware"
	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/internal/repository"
	"github.com/noah-isme/formation-api/internal/repository/memory"
	"github.com/noah-isme/formation-api/internal/service"
	"github.com/noah-isme/formation-api/pkg/cache"
	"github.com/noah-isme/formation-api/pkg/config"
	"github.com/noah-isme/formation-api/pkg/database"
	"github.com/noah-isme/formation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/formation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/formation-api/pkg/middleware/requestid"
	"github.com/noah-isme/formation-api/pkg/validation"
)

// @title Formation Enrollment API
// @version 1.0
// @description Registration, login and seat-limited enrollment in training formations.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type principalStore interface {
	FindByEmail(ctx context.Context, role models.Role, email string) (models.Principal, error)
	FindByID(ctx context.Context, role models.Role, id string) (models.Principal, error)
	Create(ctx context.Context, principal models.Principal) error
}

type formationStore interface {
	Capacity(ctx context.Context, id string) (*models.FormationCapacity, error)
	ListCapacity(ctx context.Context) ([]models.FormationCapacity, error)
}

type enrollmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Exists(ctx context.Context, studentID, formationID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	TransitionStatus(ctx context.Context, id string, from, to models.EnrollmentStatus) (*models.Enrollment, error)
	Delete(ctx context.Context, id string) error
}

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// stores is the storage backend selected by STORAGE_DRIVER.
type stores struct {
	principals  principalStore
	formations  formationStore
	enrollments enrollmentStore
	audit       auditStore
	checks      map[string]handler.ReadinessCheck
	close       func()
}

func main() {
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr, *migrateOnly); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateOnly {
		return runMigrations(ctx, cfg, logr)
	}

	st, err := openStores(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *redis.Client
	if cfg.Auth.LoginThrottleEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close() //nolint:errcheck
		st.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var audit *service.AuditService
	if cfg.Audit.Enabled {
		audit = service.NewAuditService(st.audit, metrics, logr, service.AuditConfig{Workers: cfg.Audit.Workers, Buffer: cfg.Audit.Buffer})
		audit.Start(context.Background())
	}

	hasher, err := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, TTL: cfg.JWT.Expiration})
	validate := validation.New()

	authSvc := service.NewAuthService(
		st.principals,
		repository.NewLoginAttemptRepository(redisClient),
		hasher,
		tokens,
		metrics,
		validate,
		logr,
		service.AuthConfig{
			LoginThrottleEnabled: cfg.Auth.LoginThrottleEnabled,
			LoginMaxAttempts:     cfg.Auth.LoginMaxAttempts,
			LoginLockoutWindow:   cfg.Auth.LoginLockoutWindow,
		},
	)
	enrollmentSvc := service.NewEnrollmentService(st.enrollments, st.formations, st.principals, metrics, logr)
	formationSvc := service.NewFormationService(st.formations)
	guard := service.NewAccessGuard(tokens, st.principals, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, st.checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if metrics != nil {
		r.GET("/metrics", ops.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.RouterConfig{
		Auth:              handler.NewAuthHandler(authSvc),
		Formations:        handler.NewFormationHandler(formationSvc),
		Enrollments:       handler.NewEnrollmentHandler(enrollmentSvc, validate),
		Guard:             guard,
		Audit:             audit,
		StaffRegistration: cfg.Auth.StaffRegistrationEnabled,
		AuthRateLimit: internalmiddleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.AuthRequestsPerMinute,
			Burst:             cfg.RateLimit.AuthBurst,
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			audit.Stop()
			return err
		}
	case <-ctx.Done():
	}

	logr.Sugar().Infow("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("http shutdown incomplete", "error", err)
	}
	// requests are finished; flush what they queued
	audit.Stop()
	logr.Sugar().Infow("server stopped")
	return nil
}

func runMigrations(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	version, err := database.Migrate(db)
	if err != nil {
		return err
	}
	logr.Sugar().Infow("migrations applied", "version", version)
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*stores, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.New()
		seeded := seedFormations(store)
		logr.Sugar().Warnw("using in-memory storage; data is lost on exit", "formations", seeded)
		return &stores{
			principals:  store.Principals(),
			formations:  store.Formations(),
			enrollments: store.Enrollments(),
			audit:       store.Audit(),
			checks:      map[string]handler.ReadinessCheck{},
			close:       func() {},
		}, nil
	default:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			version, err := database.Migrate(db)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			logr.Sugar().Infow("migrations applied", "version", version)
		}
		return &stores{
			principals:  repository.NewPrincipalRepository(db),
			formations:  repository.NewFormationRepository(db),
			enrollments: repository.NewEnrollmentRepository(db),
			audit:       repository.NewAuditRepository(db),
			checks: map[string]handler.ReadinessCheck{
				"database": db.PingContext,
			},
			close: func() { _ = db.Close() },
		}, nil
	}
}

// seedFormations gives the in-memory backend a small catalogue to enroll in.
func seedFormations(store *memory.Store) int {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 14)
	catalogue := []struct {
		name  string
		spots int
		weeks int
	}{
		{"Go Fundamentals", 20, 2},
		{"PostgreSQL for Developers", 12, 3},
		{"Production Kubernetes", 8, 4},
	}
	for _, f := range catalogue {
		store.Formations().Add(models.Formation{
			Name:           f.name,
			AvailableSpots: f.spots,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 7*f.weeks),
		})
	}
	return len(catalogue)
}
