package port

import (
	"context"
	"monitoring-service/internal/core/domain"
)

// RunControlPort - управление планировщиком со стороны HTTP-границы.
// TriggerRun возвращает domain.ErrRunInProgress, если прогон уже идёт;
// запуск выполняется асинхронно.
type RunControlPort interface {
	TriggerRun(ctx context.Context) error
	Snapshot() domain.SchedulerSnapshot
}
