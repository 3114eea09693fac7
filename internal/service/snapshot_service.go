package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/model"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/repository"
)

// snapshotTimeout bounds a single scheduled snapshot run.
const snapshotTimeout = 5 * time.Minute

// SnapshotService periodically aggregates every stored transaction and records the result.
// Transactions the calculator rejects are skipped and counted, never fatal.
type SnapshotService struct {
	ledgerService *LedgerService
	snapshotRepo  *repository.SnapshotRepository
	schedule      string
	cron          *cron.Cron
	log           zerolog.Logger

	mu      sync.Mutex
	started bool
	entryID cron.EntryID
}

// NewSnapshotService creates a SnapshotService running on the given cron schedule.
// Standard five-field specs and descriptors such as @daily or @every 1h are accepted.
func NewSnapshotService(
	ledgerService *LedgerService,
	snapshotRepo *repository.SnapshotRepository,
	schedule string,
	log zerolog.Logger,
) (*SnapshotService, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}

	log = log.With().Str("component", "snapshot_service").Logger()
	cronLog := cronLogger{log: log}

	scheduler := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &SnapshotService{
		ledgerService: ledgerService,
		snapshotRepo:  snapshotRepo,
		schedule:      schedule,
		cron:          scheduler,
		log:           log,
	}, nil
}

// Start schedules the snapshot job. Calling Start more than once has no effect.
func (s *SnapshotService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.entryID == 0 {
		id, err := s.cron.AddFunc(s.schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
			defer cancel()

			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("scheduled metrics snapshot failed")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule metrics snapshot: %w", err)
		}
		s.entryID = id
	}

	s.cron.Start()
	s.started = true
	s.log.Info().Str("schedule", s.schedule).Msg("metrics snapshot job started")
	return nil
}

// Stop halts the scheduler and returns a context that is done once a running job has finished.
func (s *SnapshotService) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	return s.cron.Stop()
}

// RunOnce aggregates every stored transaction in collect-errors mode and persists the result.
func (s *SnapshotService) RunOnce(ctx context.Context) (model.MetricsSnapshot, error) {
	result, err := s.ledgerService.Metrics(ctx, model.TransactionFilter{}, ledger.ModeCollectErrors)
	if err != nil {
		return model.MetricsSnapshot{}, err
	}

	snapshot := model.MetricsSnapshot{
		ID:               uuid.New().String(),
		TakenAt:          time.Now().UTC(),
		Metrics:          result.Metrics,
		TransactionCount: result.Metrics.TransactionCount,
		SkippedCount:     len(result.Errors),
	}

	if err := s.snapshotRepo.InsertSnapshot(ctx, snapshot); err != nil {
		return model.MetricsSnapshot{}, err
	}

	s.log.Info().
		Str("snapshot_id", snapshot.ID).
		Int("transactions", snapshot.TransactionCount).
		Int("skipped", snapshot.SkippedCount).
		Int64("net_worth", snapshot.Metrics.NetWorth).
		Msg("metrics snapshot recorded")

	return snapshot, nil
}

// LatestSnapshot returns the most recent recorded snapshot.
func (s *SnapshotService) LatestSnapshot(ctx context.Context) (model.MetricsSnapshot, error) {
	return s.snapshotRepo.LatestSnapshot(ctx)
}

// cronLogger adapts zerolog to the cron.Logger interface.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NextRun returns the next scheduled run, or the zero time when the job is not started.
func (s *SnapshotService) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
