package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslink/portal-api/pkg/jobs"
)

// SweepJobType identifies stale export cleanup jobs.
const SweepJobType = "export_sweep"

// ExportDir is the storage subdirectory generated timetables land in.
const ExportDir = "timetables"

type fileSweeper interface {
	CleanupOlderThan(dir string, cutoff time.Time) (int, error)
}

type maintenanceQueue interface {
	Enqueue(job jobs.Job) error
}

// SweepWorker removes generated export files older than the retention
// window. Exports are throwaway artifacts; once the signed download URL has
// expired the file on disk is dead weight.
type SweepWorker struct {
	files     fileSweeper
	retention time.Duration
	logger    *zap.Logger
}

// NewSweepWorker constructs a SweepWorker.
func NewSweepWorker(files fileSweeper, retention time.Duration, logger *zap.Logger) *SweepWorker {
	if retention <= 0 {
		retention = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepWorker{files: files, retention: retention, logger: logger}
}

// Handle processes one sweep job. The payload names the directory to sweep,
// defaulting to the export directory.
func (w *SweepWorker) Handle(ctx context.Context, job jobs.Job) error {
	dir, _ := job.Payload.(string)
	if dir == "" {
		dir = ExportDir
	}
	cutoff := time.Now().UTC().Add(-w.retention)
	removed, err := w.files.CleanupOlderThan(dir, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		w.logger.Sugar().Infow("swept stale export files", "dir", dir, "removed", removed)
	}
	return nil
}

// MaintenanceService periodically enqueues sweep jobs.
type MaintenanceService struct {
	queue    maintenanceQueue
	interval time.Duration
	logger   *zap.Logger
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(queue maintenanceQueue, interval time.Duration, logger *zap.Logger) *MaintenanceService {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{queue: queue, interval: interval, logger: logger}
}

// Run blocks, enqueuing a sweep on every tick until the context is done.
func (s *MaintenanceService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job := jobs.Job{ID: uuid.NewString(), Type: SweepJobType, Payload: ExportDir}
			if err := s.queue.Enqueue(job); err != nil {
				s.logger.Sugar().Warnw("failed to enqueue sweep", "error", err)
			}
		}
	}
}
