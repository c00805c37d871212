package postgres_adapter

import (
	"context"
	"fmt"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/port"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresNotificationLog реализует NotificationLogPort для PostgreSQL.
// Журнал переживает очистку объявлений: даже если объявление удалено
// и найдено заново, профиль не получит его во второй раз.
type PostgresNotificationLog struct {
	dbPool *pgxpool.Pool
}

// NewPostgresNotificationLog создает новый экземпляр PostgresNotificationLog
func NewPostgresNotificationLog(dbPool *pgxpool.Pool) (*PostgresNotificationLog, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("postgres notification log: dbPool cannot be nil")
	}
	return &PostgresNotificationLog{dbPool: dbPool}, nil
}

// WasNotified проверяет, уходило ли объявление указанному профилю.
func (r *PostgresNotificationLog) WasNotified(ctx context.Context, source, externalID, profile string) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresNotificationLog",
		"method":    "WasNotified",
	})

	var sent bool
	query := `SELECT EXISTS(SELECT 1 FROM notifications WHERE source = $1 AND external_id = $2 AND profile = $3)`

	err := r.dbPool.QueryRow(ctx, query, source, externalID, profile).Scan(&sent)
	if err != nil {
		repoLogger.Error("Error checking notification log", err, port.Fields{
			"source":      source,
			"external_id": externalID,
			"profile":     profile,
		})
		return false, fmt.Errorf("PostgresNotificationLog: error checking '%s:%s' for profile '%s': %w", source, externalID, profile, err)
	}

	return sent, nil
}

// MarkNotified фиксирует факт отправки. Повторная отметка не ошибка.
func (r *PostgresNotificationLog) MarkNotified(ctx context.Context, source, externalID, profile string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresNotificationLog",
		"method":    "MarkNotified",
	})

	query := `
        INSERT INTO notifications (source, external_id, profile)
        VALUES ($1, $2, $3)
        ON CONFLICT (source, external_id, profile) DO NOTHING
    `

	_, err := r.dbPool.Exec(ctx, query, source, externalID, profile)
	if err != nil {
		repoLogger.Error("Error marking notification", err, port.Fields{
			"source":      source,
			"external_id": externalID,
			"profile":     profile,
		})
		return fmt.Errorf("PostgresNotificationLog: error marking '%s:%s' for profile '%s': %w", source, externalID, profile, err)
	}

	return nil
}
