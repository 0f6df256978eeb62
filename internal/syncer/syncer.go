// Package syncer orchestrates the bidirectional synchronization cycle: an
// initial pull with backoff, a live subscription for incoming changes, and a
// periodic push of locally modified entities. The dirty flag is the retry
// queue: push failures leave it set, so the next cycle picks the entity up
// again.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/planloop/planloop/internal/auth"
	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/dto"
	"github.com/planloop/planloop/internal/logging"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/processors"
	"github.com/planloop/planloop/internal/remote"
)

// Options tune the orchestration cycle.
type Options struct {
	// PushInterval is the period between dirty-entity pushes.
	PushInterval time.Duration

	// StartupDelay postpones the first pull so the host application can
	// finish initializing.
	StartupDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.PushInterval <= 0 {
		o.PushInterval = 30 * time.Second
	}
	if o.StartupDelay < 0 {
		o.StartupDelay = 0
	}
	return o
}

// Syncer drives the sync engine for one authenticated user.
type Syncer struct {
	auth     auth.Provider
	client   remote.Client
	svc      *processors.Services
	pipeline *processors.Pipeline
	log      logging.Logger
	opts     Options

	running    atomic.Bool
	inProgress atomic.Bool
	exec       *executor

	mu        sync.Mutex
	userID    string
	cancelRun context.CancelFunc
	cancelSub remote.CancelFunc
}

func New(authProvider auth.Provider, client remote.Client, svc *processors.Services,
	log logging.Logger, opts Options) *Syncer {
	s := &Syncer{
		auth:     authProvider,
		client:   client,
		svc:      svc,
		pipeline: processors.NewPipeline(svc),
		log:      log,
		opts:     opts.withDefaults(),
	}
	s.exec = newExecutor()
	s.exec.start()

	// sign-out stops the cycle; the host restarts it after the next sign-in
	authProvider.OnAuthChange(func(userID string) {
		if userID == "" {
			s.Stop()
		}
	})

	return s
}

// executor returns the current serial executor, or nil after Stop.
func (s *Syncer) executor() *executor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec
}

// Start begins the sync cycle. With no authenticated user it fails
// immediately and schedules nothing.
func (s *Syncer) Start(ctx context.Context) error {
	userID, err := s.auth.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if userID == "" {
		return common.ErrorNotAuthenticated
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.userID = userID
	s.cancelRun = cancel
	if s.exec == nil {
		s.exec = newExecutor()
		s.exec.start()
	}
	s.mu.Unlock()

	go s.run(runCtx)
	return nil
}

// Stop cancels the periodic push and the live subscription. Idempotent.
func (s *Syncer) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.mu.Lock()
	cancelRun := s.cancelRun
	cancelSub := s.cancelSub
	exec := s.exec
	s.cancelRun = nil
	s.cancelSub = nil
	s.exec = nil
	s.mu.Unlock()

	// subscription first, so no callback lands on a stopped executor
	if cancelSub != nil {
		cancelSub()
	}
	if cancelRun != nil {
		cancelRun()
	}
	if exec != nil {
		exec.stop()
	}
}

func (s *Syncer) run(ctx context.Context) {
	select {
	case <-time.After(s.opts.StartupDelay):
	case <-ctx.Done():
		return
	}

	// The initial pull retries briefly; a persistent failure is tolerated
	// because the live subscription is the recovery path for missed state.
	backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.pullGuarded(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn(ctx, "initial pull failed, relying on live subscription", "error", err)
	}

	s.subscribe(ctx)

	ticker := time.NewTicker(s.opts.PushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncNow(ctx); err != nil {
				s.log.Warn(ctx, "periodic sync failed", "error", err)
			}
		}
	}
}

func (s *Syncer) subscribe(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	cancelSub, err := s.client.SubscribeToEntityUpdates(ctx, userID, s.onRemoteUpdate)
	if err != nil {
		s.log.Error(ctx, "failed to establish live subscription", "error", err)
		return
	}

	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		cancelSub()
		return
	}
	s.cancelSub = cancelSub
	s.mu.Unlock()
}

// onRemoteUpdate applies a live change batch on the serial executor.
func (s *Syncer) onRemoteUpdate(batch remote.UpdateBatch) {
	ex := s.executor()
	if ex == nil {
		return
	}
	ex.do(func() {
		ctx := context.Background()
		applied := s.pipeline.Apply(ctx, batch)
		s.log.Debug(ctx, "applied live updates", "count", applied)
	})
}

// SyncNow pushes all dirty entities and then pulls remote changes. While
// another sync is in flight it resolves immediately as a no-op success.
func (s *Syncer) SyncNow(ctx context.Context) error {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync already in progress, skipping")
		return nil
	}
	defer s.inProgress.Store(false)

	pushErr := s.push(ctx)
	pullErr := s.pull(ctx)
	return errors.Join(pushErr, pullErr)
}

// push sends dirty entities one kind at a time. A failing kind is surfaced
// but does not stop the remaining kinds, and its entities stay dirty for the
// next cycle.
func (s *Syncer) push(ctx context.Context) error {
	groups, err := s.svc.DirtyEntities(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, g := range groups {
		if len(g.Entities) == 0 {
			continue
		}
		if err := s.pushGroup(ctx, g); err != nil {
			s.log.Warn(ctx, "push failed for kind", "entityType", g.Type, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", g.Type, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) pushGroup(ctx context.Context, g processors.DirtyGroup) error {
	dtos := make([]dto.DTO, 0, len(g.Entities))
	for _, e := range g.Entities {
		d, err := dto.Encode(e)
		if err != nil {
			s.log.Error(ctx, "failed to encode entity", "entityType", g.Type, "uid", e.Base().UID, "error", err)
			continue
		}
		dtos = append(dtos, d)
	}

	// Only entities the client reports as committed may lose the dirty
	// flag. Skipped DTOs and batches after a failure stay dirty, so the
	// next cycle retries them.
	res, err := s.client.SyncEntities(ctx, dtos)
	if len(res.SyncedUIDs) > 0 {
		if markErr := s.markSyncedByUID(ctx, g.Entities, res.SyncedUIDs); markErr != nil {
			return errors.Join(err, markErr)
		}
	}
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		s.log.Warn(ctx, "invalid entities left dirty", "entityType", g.Type, "skipped", res.Skipped)
	}
	s.log.Info(ctx, "pushed entities", "entityType", g.Type,
		"synced", res.Synced, "skipped", res.Skipped, "batches", res.CommittedBatches)
	return nil
}

func (s *Syncer) markSyncedByUID(ctx context.Context, entities []models.Entity, uids []string) error {
	committed := make(map[string]bool, len(uids))
	for _, uid := range uids {
		committed[uid] = true
	}

	ex := s.executor()
	if ex == nil {
		return common.ErrorSyncStopped
	}

	var err error
	ok := ex.doWait(func() {
		for _, e := range entities {
			if !committed[e.Base().UID] {
				continue
			}
			e.Base().MarkSynced()
			if saveErr := s.svc.Save(ctx, e); saveErr != nil {
				err = saveErr
				return
			}
		}
	})
	if !ok {
		return common.ErrorSyncStopped
	}
	return err
}

// pullGuarded runs pull under the same in-flight guard as SyncNow, so the
// startup pull cannot overlap a manually triggered sync. While a sync is in
// flight it resolves immediately as a no-op success.
func (s *Syncer) pullGuarded(ctx context.Context) error {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.log.Debug(ctx, "sync already in progress, skipping pull")
		return nil
	}
	defer s.inProgress.Store(false)
	return s.pull(ctx)
}

// pull fetches updates since the per-user low-water mark and applies them on
// the serial executor. Entities applied before a failure stay applied.
func (s *Syncer) pull(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()

	batch, err := s.client.FetchUpdatedEntities(ctx, userID)
	if err != nil {
		return err
	}

	ex := s.executor()
	if ex == nil {
		return common.ErrorSyncStopped
	}
	ok := ex.doWait(func() {
		applied := s.pipeline.Apply(ctx, batch)
		s.log.Debug(ctx, "applied pulled updates", "count", applied)
	})
	if !ok {
		return common.ErrorSyncStopped
	}
	return nil
}

// SyncEntityImmediately persists a locally edited entity and pushes it
// outside the periodic cycle, for low-latency user-visible actions.
func (s *Syncer) SyncEntityImmediately(ctx context.Context, e models.Entity) error {
	userID, err := s.auth.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	e.Base().Touch(userID)
	ex := s.executor()
	if ex == nil {
		return common.ErrorSyncStopped
	}
	if ok := ex.doWait(func() { err = s.svc.Save(ctx, e) }); !ok {
		return common.ErrorSyncStopped
	}
	if err != nil {
		return err
	}

	d, err := dto.Encode(e)
	if err != nil {
		return err
	}

	res, err := s.client.SyncEntities(ctx, []dto.DTO{d})
	if err != nil {
		// stays dirty; the periodic cycle retries
		return err
	}

	return s.markSyncedByUID(ctx, []models.Entity{e}, res.SyncedUIDs)
}
