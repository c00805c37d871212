package port

import (
	"context"
	"monitoring-service/internal/core/domain"
)

// SourceAdapterPort объединяет все операции, которые конвейер выполняет
// с одним источником объявлений. Новый источник подключается новой
// реализацией порта, общий код конвейера не меняется.
type SourceAdapterPort interface {
	// Name возвращает идентификатор источника (ключ в статистике прогона)
	Name() string

	// BuildSearchURL детерминированно строит URL первой страницы выдачи
	// по критериям профиля. Возвращает *domain.ConfigurationError, если
	// критерии невыразимы в грамматике запросов источника.
	BuildSearchURL(profile domain.SearchProfile) (string, error)

	// FetchPage выполняет один сетевой запрос с ограниченным таймаутом и
	// разбирает страницу выдачи в нормализованные объявления.
	// Возвращает *domain.FetchError либо *domain.ParseError; обе ошибки
	// гасятся на уровне конвейера.
	FetchPage(ctx context.Context, pageURL string) (domain.ListingPage, error)
}
