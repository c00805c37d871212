package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRunRepository реализует RunRepositoryPort для PostgreSQL
type PostgresRunRepository struct {
	dbPool *pgxpool.Pool
}

// NewPostgresRunRepository создает новый экземпляр PostgresRunRepository
func NewPostgresRunRepository(dbPool *pgxpool.Pool) (*PostgresRunRepository, error) {
	if dbPool == nil {
		return nil, fmt.Errorf("postgres run repository: dbPool cannot be nil")
	}
	return &PostgresRunRepository{dbPool: dbPool}, nil
}

// Save сохраняет итог завершенного прогона в журнал.
func (r *PostgresRunRepository) Save(ctx context.Context, result *domain.RunResult) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRunRepository",
		"method":    "Save",
	})

	statsJSON, err := json.Marshal(result.SourceStats)
	if err != nil {
		repoLogger.Error("Error marshaling source stats", err, port.Fields{"run_id": result.ID})
		return fmt.Errorf("PostgresRunRepo: error marshaling stats for run '%s': %w", result.ID, err)
	}

	query := `
        INSERT INTO runs (
            id, status, started_at, finished_at,
            total_found, total_new, total_errors,
            source_stats, error_message
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	repoLogger.Debug("Saving run result", port.Fields{
		"run_id": result.ID,
		"status": result.Status,
	})

	_, err = r.dbPool.Exec(ctx, query,
		result.ID, string(result.Status), result.StartedAt, result.FinishedAt,
		result.TotalFound, result.TotalNew, result.TotalErrors,
		statsJSON, result.ErrorMessage,
	)
	if err != nil {
		repoLogger.Error("Error saving run result", err, port.Fields{"run_id": result.ID})
		return fmt.Errorf("PostgresRunRepo: error saving run '%s': %w", result.ID, err)
	}

	return nil
}

// FindByID возвращает один прогон по его идентификатору.
func (r *PostgresRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.RunResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRunRepository",
		"method":    "FindByID",
		"run_id":    id,
	})

	query := `
        SELECT
            id, status, started_at, finished_at,
            total_found, total_new, total_errors,
            source_stats, error_message
        FROM runs
        WHERE id = $1
    `

	var res domain.RunResult
	var status string
	var statsJSON []byte

	err := r.dbPool.QueryRow(ctx, query, id).Scan(
		&res.ID, &status, &res.StartedAt, &res.FinishedAt,
		&res.TotalFound, &res.TotalNew, &res.TotalErrors,
		&statsJSON, &res.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Run not found", nil)
			return nil, domain.ErrRunNotFound
		}
		repoLogger.Error("Error querying run", err, nil)
		return nil, fmt.Errorf("PostgresRunRepo: error querying run '%s': %w", id, err)
	}

	res.Status = domain.RunStatus(status)
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &res.SourceStats); err != nil {
			repoLogger.Error("Error unmarshaling source stats", err, nil)
			return nil, fmt.Errorf("PostgresRunRepo: error unmarshaling stats for run '%s': %w", id, err)
		}
	}

	return &res, nil
}

// FindRecent возвращает последние прогоны, начиная с самого свежего.
func (r *PostgresRunRepository) FindRecent(ctx context.Context, limit int) ([]domain.RunResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresRunRepository",
		"method":    "FindRecent",
	})

	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT
            id, status, started_at, finished_at,
            total_found, total_new, total_errors,
            source_stats, error_message
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1
    `

	rows, err := r.dbPool.Query(ctx, query, limit)
	if err != nil {
		repoLogger.Error("Error querying runs", err, nil)
		return nil, fmt.Errorf("PostgresRunRepo: error querying runs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RunResult, 0, limit)
	for rows.Next() {
		var res domain.RunResult
		var status string
		var statsJSON []byte

		err := rows.Scan(
			&res.ID, &status, &res.StartedAt, &res.FinishedAt,
			&res.TotalFound, &res.TotalNew, &res.TotalErrors,
			&statsJSON, &res.ErrorMessage,
		)
		if err != nil {
			repoLogger.Error("Error scanning run row", err, nil)
			return nil, fmt.Errorf("PostgresRunRepo: error scanning run: %w", err)
		}

		res.Status = domain.RunStatus(status)
		if len(statsJSON) > 0 {
			if err := json.Unmarshal(statsJSON, &res.SourceStats); err != nil {
				repoLogger.Error("Error unmarshaling source stats", err, port.Fields{"run_id": res.ID})
				return nil, fmt.Errorf("PostgresRunRepo: error unmarshaling stats for run '%s': %w", res.ID, err)
			}
		}

		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error iterating run rows", err, nil)
		return nil, fmt.Errorf("PostgresRunRepo: error iterating runs: %w", err)
	}

	repoLogger.Debug("Found runs", port.Fields{"count": len(results)})
	return results, nil
}
