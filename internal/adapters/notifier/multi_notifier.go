package notifier_adapter

import (
	"context"
	"errors"
	"fmt"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"

	"github.com/google/uuid"
)

// MultiNotifierAdapter раздаёт подборку всем настроенным каналам доставки.
// Каналы независимы: сбой Telegram не останавливает публикацию в очередь.
type MultiNotifierAdapter struct {
	notifiers []port.NotifierPort
}

func NewMultiNotifierAdapter(notifiers ...port.NotifierPort) (port.NotifierPort, error) {
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("multinotifier: at least one notifier is required")
	}
	return &MultiNotifierAdapter{notifiers: notifiers}, nil
}

func (m *MultiNotifierAdapter) Name() string {
	return "multi"
}

func (m *MultiNotifierAdapter) Notify(ctx context.Context, runID uuid.UUID, profileName string, listings []domain.Listing) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, runID, profileName, listings); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
