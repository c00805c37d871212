package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"

	"github.com/google/uuid"
)

// RunPipelineUseCase - один прогон конвейера: декартово произведение
// включённых профилей и источников, фильтрация, дедупликация через
// хранилище и раздача подборок новых объявлений уведомителям.
type RunPipelineUseCase struct {
	profiles        []domain.SearchProfile
	sources         []port.SourceAdapterPort
	storage         port.ListingStoragePort
	runRepo         port.RunRepositoryPort
	notificationLog port.NotificationLogPort
	notifier        port.NotifierPort
	maxPages        int
	retention       time.Duration
}

// NewRunPipelineUseCase создает новый экземпляр RunPipelineUseCase
func NewRunPipelineUseCase(
	profiles []domain.SearchProfile,
	sources []port.SourceAdapterPort,
	storage port.ListingStoragePort,
	runRepo port.RunRepositoryPort,
	notificationLog port.NotificationLogPort,
	notifier port.NotifierPort,
	maxPages int,
	retention time.Duration,
) *RunPipelineUseCase {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &RunPipelineUseCase{
		profiles:        profiles,
		sources:         sources,
		storage:         storage,
		runRepo:         runRepo,
		notificationLog: notificationLog,
		notifier:        notifier,
		maxPages:        maxPages,
		retention:       retention,
	}
}

// Execute запускает прогон и всегда возвращает заполненный RunResult.
// Ошибка не-nil только когда прогон был прерван (хранилище недоступно
// или контекст отменён); она продублирована в result.ErrorMessage.
func (uc *RunPipelineUseCase) Execute(ctx context.Context) (*domain.RunResult, error) {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	runLogger := baseLogger.WithFields(port.Fields{"use_case": "RunPipeline"})

	result := domain.NewRunResult()

	// Все логи и исходящие события прогона связываются его идентификатором
	if contextkeys.TraceIDFromContext(ctx) == "" {
		ctx = contextkeys.ContextWithTraceID(ctx, result.ID.String())
	}

	// Новые объявления прогона по профилям: объявление пишется в хранилище
	// один раз, но попадает в подборку каждого подошедшего профиля
	newByProfile := make(map[string][]domain.Listing)
	upserted := make(map[string]domain.UpsertStatus)

	enabled := make([]domain.SearchProfile, 0, len(uc.profiles))
	for _, p := range uc.profiles {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}

	runLogger.Info("Starting pipeline run", port.Fields{
		"run_id":   result.ID.String(),
		"profiles": len(enabled),
		"sources":  len(uc.sources),
	})

	var abortErr error

Pairs:
	for _, profile := range enabled {
		for _, source := range uc.sources {
			if !profile.UsesSource(source.Name()) {
				continue
			}

			select {
			case <-ctx.Done():
				abortErr = fmt.Errorf("run aborted: %w", ctx.Err())
				break Pairs
			default:
			}

			if err := uc.scrapePair(ctx, profile, source, result, newByProfile, upserted); err != nil {
				// Сюда доходит только отказ хранилища: прогон прерывается,
				// частично собранная статистика остаётся в результате
				abortErr = err
				break Pairs
			}
		}
	}

	result.FinishedAt = time.Now().UTC()
	for _, stats := range result.SourceStats {
		result.TotalFound += stats.Found
		result.TotalNew += stats.New
		result.TotalErrors += stats.Errors
	}

	if abortErr != nil {
		result.Status = domain.RunError
		msg := abortErr.Error()
		result.ErrorMessage = &msg
		runLogger.Error("Pipeline run aborted", abortErr, port.Fields{"run_id": result.ID.String()})
	} else {
		uc.purgeStale(ctx, runLogger)
	}

	uc.persistRun(ctx, result, runLogger)

	if result.Status == domain.RunCompleted {
		uc.dispatchNotifications(ctx, result.ID, enabled, newByProfile, runLogger)
	}

	runLogger.Info("Pipeline run finished", port.Fields{
		"run_id":      result.ID.String(),
		"status":      string(result.Status),
		"total_found": result.TotalFound,
		"total_new":   result.TotalNew,
		"errors":      result.TotalErrors,
		"duration":    result.ClockDuration(),
	})

	return result, abortErr
}

// scrapePair обходит выдачу одного источника по одному профилю.
// Ошибки построения URL и страниц гасятся здесь же; наружу выходит
// только отказ хранилища.
func (uc *RunPipelineUseCase) scrapePair(
	ctx context.Context,
	profile domain.SearchProfile,
	source port.SourceAdapterPort,
	result *domain.RunResult,
	newByProfile map[string][]domain.Listing,
	upserted map[string]domain.UpsertStatus,
) error {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	pairLogger := baseLogger.WithFields(port.Fields{
		"use_case": "RunPipeline",
		"profile":  profile.Name,
		"source":   source.Name(),
	})

	stats := result.StatsFor(source.Name())

	searchURL, err := source.BuildSearchURL(profile)
	if err != nil {
		var confErr *domain.ConfigurationError
		if errors.As(err, &confErr) {
			pairLogger.Warn("Profile is not expressible for this source, skipping pair", port.Fields{
				"reason": confErr.Reason,
			})
		} else {
			pairLogger.Warn("Search URL could not be built, skipping pair", port.Fields{
				"error": err.Error(),
			})
		}
		return nil
	}

	pageURL := searchURL
	for page := 1; pageURL != "" && page <= uc.maxPages; page++ {
		pageLogger := pairLogger.WithFields(port.Fields{"page": page, "url": pageURL})
		pageLogger.Debug("Fetching page", nil)

		pageResult, fetchErr := source.FetchPage(ctx, pageURL)
		if fetchErr != nil {
			// Сбой одного источника не трогает остальные пары;
			// собранные до него страницы уже учтены
			stats.Errors++
			pageLogger.Error("Page fetch failed, keeping listings collected so far", fetchErr, nil)
			return nil
		}

		stats.Found += len(pageResult.Listings)

		for _, listing := range pageResult.Listings {
			if !domain.Matches(listing, profile) {
				continue
			}

			key := listing.DedupKey()
			status, known := upserted[key]
			if !known {
				status, err = uc.storage.Upsert(ctx, listing)
				if err != nil {
					return fmt.Errorf("upsert %s: %w", key, err)
				}
				upserted[key] = status
				if status == domain.UpsertNew {
					stats.New++
				}
			}

			if status == domain.UpsertNew {
				newByProfile[profile.Name] = append(newByProfile[profile.Name], listing)
			}
		}

		pageURL = pageResult.NextPageURL
	}

	return nil
}

// purgeStale удаляет объявления старше окна хранения. Сбой очистки не
// меняет статус прогона: обнаружение уже состоялось.
func (uc *RunPipelineUseCase) purgeStale(ctx context.Context, logger port.LoggerPort) {
	if uc.retention <= 0 {
		return
	}

	cutoff := time.Now().UTC().Add(-uc.retention)
	removed, err := uc.storage.PurgeStale(ctx, cutoff)
	if err != nil {
		logger.Warn("Stale listings purge failed", port.Fields{"error": err.Error()})
		return
	}
	if removed > 0 {
		logger.Info("Purged stale listings", port.Fields{"removed": removed, "cutoff": cutoff})
	}
}

func (uc *RunPipelineUseCase) persistRun(ctx context.Context, result *domain.RunResult, logger port.LoggerPort) {
	if uc.runRepo == nil {
		return
	}
	if err := uc.runRepo.Save(ctx, result); err != nil {
		logger.Error("Failed to persist run result", err, port.Fields{"run_id": result.ID.String()})
	}
}

// dispatchNotifications отправляет подборку каждому профилю с новыми
// объявлениями: один вызов уведомителя на профиль. Сбой доставки только
// логируется и не меняет статус прогона.
func (uc *RunPipelineUseCase) dispatchNotifications(
	ctx context.Context,
	runID uuid.UUID,
	profiles []domain.SearchProfile,
	newByProfile map[string][]domain.Listing,
	logger port.LoggerPort,
) {
	if uc.notifier == nil {
		return
	}

	for _, profile := range profiles {
		listings := newByProfile[profile.Name]
		if len(listings) == 0 {
			continue
		}

		fresh := uc.filterAlreadyNotified(ctx, profile.Name, listings, logger)
		if len(fresh) == 0 {
			continue
		}

		if err := uc.notifier.Notify(ctx, runID, profile.Name, fresh); err != nil {
			logger.Error("Notification delivery failed", err, port.Fields{
				"profile": profile.Name,
				"count":   len(fresh),
			})
			continue
		}

		logger.Info("Notified about new listings", port.Fields{
			"profile": profile.Name,
			"count":   len(fresh),
		})

		for _, listing := range fresh {
			if err := uc.notificationLog.MarkNotified(ctx, listing.Source, listing.ExternalID, profile.Name); err != nil {
				logger.Warn("Failed to record notification", port.Fields{
					"listing": listing.DedupKey(),
					"error":   err.Error(),
				})
			}
		}
	}
}

// filterAlreadyNotified убирает объявления, уже отправлявшиеся профилю в
// прошлых прогонах (возможно после очистки и повторного обнаружения).
// При недоступном журнале объявление лучше отправить повторно, чем потерять.
func (uc *RunPipelineUseCase) filterAlreadyNotified(
	ctx context.Context,
	profileName string,
	listings []domain.Listing,
	logger port.LoggerPort,
) []domain.Listing {
	if uc.notificationLog == nil {
		return listings
	}

	fresh := make([]domain.Listing, 0, len(listings))
	for _, listing := range listings {
		sent, err := uc.notificationLog.WasNotified(ctx, listing.Source, listing.ExternalID, profileName)
		if err != nil {
			logger.Warn("Notification log lookup failed", port.Fields{
				"listing": listing.DedupKey(),
				"error":   err.Error(),
			})
			sent = false
		}
		if !sent {
			fresh = append(fresh, listing)
		}
	}
	return fresh
}
