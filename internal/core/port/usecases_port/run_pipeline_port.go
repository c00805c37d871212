package usecases_port

import (
	"context"
	"monitoring-service/internal/core/domain"
)

type RunPipelinePort interface {
	Execute(ctx context.Context) (*domain.RunResult, error)
}
