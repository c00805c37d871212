package scheduler

import (
	"context"
	"sync"
	"time"

	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"monitoring-service/internal/core/port/usecases_port"
)

const defaultPollInterval = 30 * time.Second

// Scheduler - конечный автомат idle/running поверх конвейера. Переход
// idle→running происходит по таймеру или ручному триггеру, running→idle
// по завершении прогона. Повторный триггер во время прогона отклоняется,
// поэтому два прогона не могут работать с хранилищем одновременно.
type Scheduler struct {
	pipeline usecases_port.RunPipelinePort
	interval time.Duration
	poll     time.Duration
	logger   port.LoggerPort

	mu        sync.Mutex
	phase     domain.SchedulerPhase
	lastRun   *domain.RunResult
	nextRunAt time.Time
	runCtx    context.Context

	wg sync.WaitGroup
}

// NewScheduler создает новый экземпляр Scheduler.
// pollInterval задаёт шаг опроса таймера; нулевое значение берёт умолчание.
func NewScheduler(pipeline usecases_port.RunPipelinePort, interval, pollInterval time.Duration, logger port.LoggerPort) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Scheduler{
		pipeline: pipeline,
		interval: interval,
		poll:     pollInterval,
		logger:   logger.WithFields(port.Fields{"component": "scheduler"}),
		phase:    domain.PhaseIdle,
	}
}

// Start блокируется до отмены контекста. Первый прогон стартует сразу,
// дальше nextRunAt пересчитывается после каждого завершения.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.nextRunAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("Scheduler started", port.Fields{
		"interval": s.interval.String(),
		"poll":     s.poll.String(),
	})

	s.maybeTrigger()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.maybeTrigger()
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping, waiting for in-flight run...", nil)
			s.wg.Wait()
			s.logger.Info("Scheduler stopped.", nil)
			return nil
		}
	}
}

// TriggerRun запускает прогон вручную. Если прогон уже идёт, возвращает
// domain.ErrRunInProgress; постановки в очередь нет.
func (s *Scheduler) TriggerRun(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx)

	s.mu.Lock()
	if s.phase == domain.PhaseRunning {
		s.mu.Unlock()
		return domain.ErrRunInProgress
	}
	s.launch("manual")
	s.mu.Unlock()

	logger.Info("Manual run accepted", nil)
	return nil
}

// Snapshot возвращает копию состояния для отчётов, без побочных эффектов
func (s *Scheduler) Snapshot() domain.SchedulerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SchedulerSnapshot{
		Phase:     s.phase,
		LastRun:   s.lastRun,
		NextRunAt: s.nextRunAt,
	}
}

// maybeTrigger запускает прогон по таймеру, когда подошло время и
// планировщик свободен
func (s *Scheduler) maybeTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == domain.PhaseRunning {
		return
	}
	if s.nextRunAt.IsZero() || time.Now().UTC().Before(s.nextRunAt) {
		return
	}
	s.launch("timer")
}

// launch переводит автомат в running и стартует прогон в фоне.
// Вызывается только под s.mu.
func (s *Scheduler) launch(trigger string) {
	s.phase = domain.PhaseRunning

	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	s.wg.Add(1)
	go s.executeRun(ctx, trigger)
}

func (s *Scheduler) executeRun(ctx context.Context, trigger string) {
	defer s.wg.Done()

	runLogger := s.logger.WithFields(port.Fields{"trigger": trigger})
	runLogger.Info("Run starting", nil)

	result, err := s.pipeline.Execute(ctx)
	if err != nil {
		runLogger.Error("Run finished with error", err, nil)
	}

	s.mu.Lock()
	s.lastRun = result
	s.phase = domain.PhaseIdle
	// Каденция привязана к фактическому завершению, а не к моменту старта:
	// ручной прогон сдвигает следующий плановый так же, как таймерный
	s.nextRunAt = time.Now().UTC().Add(s.interval)
	next := s.nextRunAt
	s.mu.Unlock()

	runLogger.Info("Run finished", port.Fields{
		"status":   string(result.Status),
		"next_run": next.Format(time.RFC3339),
	})
}
