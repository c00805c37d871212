package port

import (
	"context"
	"monitoring-service/internal/core/domain"

	"github.com/google/uuid"
)

// NotifierPort - контракт доставки подборки новых объявлений вовне.
// Вызывается один раз на каждый профиль, которому подошли объявления;
// runID связывает подборку с прогоном, который её нашёл.
// Сбой доставки не влияет на статус прогона.
type NotifierPort interface {
	Name() string
	Notify(ctx context.Context, runID uuid.UUID, profileName string, listings []domain.Listing) error
}
