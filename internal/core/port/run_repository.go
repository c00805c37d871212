package port

import (
	"context"
	"monitoring-service/internal/core/domain"

	"github.com/google/uuid"
)

// RunRepositoryPort - журнал прогонов конвейера
type RunRepositoryPort interface {
	Save(ctx context.Context, result *domain.RunResult) error
	FindRecent(ctx context.Context, limit int) ([]domain.RunResult, error)

	// FindByID возвращает domain.ErrRunNotFound, если прогона с таким id нет
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RunResult, error)
}
