package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus - итоговый статус одного прогона конвейера
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// SchedulerPhase - текущая фаза планировщика
type SchedulerPhase string

const (
	PhaseIdle    SchedulerPhase = "idle"
	PhaseRunning SchedulerPhase = "running"
)

// SourceRunStats - разбивка результата прогона по одному источнику
type SourceRunStats struct {
	Found  int `json:"found"`
	New    int `json:"new"`
	Errors int `json:"errors"`
}

// RunResult - результат одного прогона конвейера по всем парам профиль×источник
type RunResult struct {
	ID          uuid.UUID                  `json:"id"`
	Status      RunStatus                  `json:"status"`
	StartedAt   time.Time                  `json:"started_at"`
	FinishedAt  time.Time                  `json:"finished_at"`
	TotalFound  int                        `json:"total_found"`
	TotalNew    int                        `json:"total_new"`
	TotalErrors int                        `json:"total_errors"`
	SourceStats map[string]*SourceRunStats `json:"source_stats"`
	// Описание ошибки верхнего уровня, если прогон был прерван
	ErrorMessage *string `json:"error_message,omitempty"`
}

// NewRunResult - конструктор результата для начинающегося прогона
func NewRunResult() *RunResult {
	return &RunResult{
		ID:          uuid.New(),
		Status:      RunCompleted,
		StartedAt:   time.Now().UTC(),
		SourceStats: make(map[string]*SourceRunStats),
	}
}

// StatsFor возвращает счётчики источника, создавая запись при первом обращении
func (r *RunResult) StatsFor(source string) *SourceRunStats {
	stats, ok := r.SourceStats[source]
	if !ok {
		stats = &SourceRunStats{}
		r.SourceStats[source] = stats
	}
	return stats
}

// Duration - длительность прогона
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ClockDuration форматирует длительность как H:MM:SS
func (r *RunResult) ClockDuration() string {
	return FormatClockDuration(r.Duration())
}

// FormatClockDuration приводит длительность к виду H:MM:SS (часы без ведущего нуля)
func FormatClockDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// SchedulerSnapshot - мгновенный снимок состояния планировщика для чтения.
// Мутирует состояние только сам планировщик, остальные компоненты видят копию.
type SchedulerSnapshot struct {
	Phase     SchedulerPhase
	LastRun   *RunResult
	NextRunAt time.Time
}
