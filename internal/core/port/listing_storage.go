package port

import (
	"context"
	"monitoring-service/internal/core/domain"
	"time"
)

// ListingStoragePort - контракт хранилища объявлений.
// Реализация обязана давать атомарный upsert при конкурентных вызовах.
type ListingStoragePort interface {
	// Exists проверяет, известен ли ключ (source, external_id)
	Exists(ctx context.Context, source, externalID string) (bool, error)

	// Upsert записывает объявление: domain.UpsertNew ровно один раз на
	// уникальный ключ за время жизни хранилища, дальше domain.UpsertSeen
	// с обновлением last_seen_at
	Upsert(ctx context.Context, listing domain.Listing) (domain.UpsertStatus, error)

	// PurgeStale удаляет объявления, не встречавшиеся с указанного момента.
	// Возвращает число удалённых строк.
	PurgeStale(ctx context.Context, olderThan time.Time) (int64, error)

	// FindRecent возвращает сохранённые объявления по необязательным фильтрам
	FindRecent(ctx context.Context, filters domain.ListingFilters) ([]domain.Listing, error)
}
