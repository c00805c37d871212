package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
)

// blockingPipeline держит прогон открытым, пока тест не закроет release,
// чтобы можно было наблюдать фазу running
type blockingPipeline struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingPipeline() *blockingPipeline {
	return &blockingPipeline{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
}

func (p *blockingPipeline) Execute(ctx context.Context) (*domain.RunResult, error) {
	p.started <- struct{}{}
	<-p.release
	return domain.NewRunResult(), nil
}

func waitForIdle(t *testing.T, s *Scheduler) domain.SchedulerSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := s.Snapshot()
		if snap.Phase == domain.PhaseIdle {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scheduler did not return to idle in time")
	return domain.SchedulerSnapshot{}
}

func TestSnapshotBeforeFirstRun(t *testing.T) {
	logger := contextkeys.LoggerFromContext(context.Background())
	sched := NewScheduler(newBlockingPipeline(), time.Hour, 0, logger)

	snap := sched.Snapshot()
	if snap.Phase != domain.PhaseIdle {
		t.Errorf("phase: got %q, want %q", snap.Phase, domain.PhaseIdle)
	}
	if snap.LastRun != nil {
		t.Errorf("LastRun before any run: got %+v, want nil", snap.LastRun)
	}
	if !snap.NextRunAt.IsZero() {
		t.Errorf("NextRunAt before Start: got %s, want zero", snap.NextRunAt)
	}
}

func TestTriggerRunRejectsConcurrentRun(t *testing.T) {
	pipeline := newBlockingPipeline()
	logger := contextkeys.LoggerFromContext(context.Background())
	sched := NewScheduler(pipeline, time.Hour, time.Hour, logger)

	ctx := context.Background()
	if err := sched.TriggerRun(ctx); err != nil {
		t.Fatalf("first trigger: %v", err)
	}

	<-pipeline.started

	if snap := sched.Snapshot(); snap.Phase != domain.PhaseRunning {
		t.Errorf("phase during run: got %q, want %q", snap.Phase, domain.PhaseRunning)
	}

	if err := sched.TriggerRun(ctx); !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("second trigger: got %v, want ErrRunInProgress", err)
	}

	close(pipeline.release)

	snap := waitForIdle(t, sched)
	if snap.LastRun == nil {
		t.Fatal("LastRun must be set after the run completes")
	}
	if snap.LastRun.Status != domain.RunCompleted {
		t.Errorf("LastRun status: got %q, want %q", snap.LastRun.Status, domain.RunCompleted)
	}
	// Каденция отсчитывается от завершения прогона
	if !snap.NextRunAt.After(time.Now().UTC()) {
		t.Errorf("NextRunAt must be in the future, got %s", snap.NextRunAt)
	}

	// Планировщик снова принимает триггеры
	if err := sched.TriggerRun(ctx); err != nil {
		t.Errorf("trigger after completion: %v", err)
	}
	<-pipeline.started
	waitForIdle(t, sched)
}

func TestStartRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	pipeline := newBlockingPipeline()
	logger := contextkeys.LoggerFromContext(context.Background())
	sched := NewScheduler(pipeline, time.Hour, 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	select {
	case <-pipeline.started:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not start after Start")
	}

	close(pipeline.release)
	waitForIdle(t, sched)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
