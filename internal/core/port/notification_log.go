package port

import (
	"context"
)

// NotificationLogPort - журнал отправленных уведомлений.
// Объявление, удалённое при очистке и найденное заново, не должно
// повторно уйти профилю, которому уже отправлялось.
type NotificationLogPort interface {
	WasNotified(ctx context.Context, source, externalID, profile string) (bool, error)
	MarkNotified(ctx context.Context, source, externalID, profile string) error
}
