package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/formation-api/internal/models"
	"github.com/noah-isme/formation-api/pkg/jobs"
)

const (
	auditJobType      = "audit_log"
	auditWriteTimeout = 5 * time.Second
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditConfig sizes the background writer pool.
type AuditConfig struct {
	Workers int
	Buffer  int
}

// AuditService persists audit entries off the request path. A nil service
// discards everything.
type AuditService struct {
	repo    auditWriter
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService builds the service and its worker queue. Call Start before
// recording and Stop on shutdown.
func NewAuditService(repo auditWriter, metrics *MetricsService, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("audit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.Buffer,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	})
	return s
}

// Start launches the writers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.queue.Start(ctx)
}

// Stop flushes queued entries and stops the writers.
func (s *AuditService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Record queues an entry. It never blocks and never fails the caller; lost
// entries are logged and counted.
func (s *AuditService) Record(entry models.AuditLog) {
	if s == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: auditJobType, Payload: entry}); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			s.metrics.RecordAuditDropped()
		}
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	writeCtx, cancel := context.WithTimeout(ctx, auditWriteTimeout)
	defer cancel()
	return s.repo.Create(writeCtx, &entry)
}
