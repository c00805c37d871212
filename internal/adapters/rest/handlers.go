package rest

import (
	"errors"
	"net/http"
	"time"

	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type MonitorHandler struct {
	runControl     port.RunControlPort
	listingStorage port.ListingStoragePort
	runRepo        port.RunRepositoryPort
	startTime      time.Time
}

// NewMonitorHandler - конструктор
func NewMonitorHandler(
	runControl port.RunControlPort,
	listingStorage port.ListingStoragePort,
	runRepo port.RunRepositoryPort,
) *MonitorHandler {
	return &MonitorHandler{
		runControl:     runControl,
		listingStorage: listingStorage,
		runRepo:        runRepo,
		startTime:      time.Now().UTC(),
	}
}

// Health - обработчик для GET /health.
// Плоский текст: эндпоинт дергают балансировщик и keep-alive пингер.
func (h *MonitorHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// GetStatus - обработчик для GET /status
func (h *MonitorHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.runControl.Snapshot()

	response := StatusResponse{
		Status:       statusLabel(snapshot),
		LastRunStats: toRunStatsDTO(snapshot.LastRun),
		StartTime:    h.startTime.Format(time.RFC3339),
	}

	if snapshot.LastRun != nil {
		lastRun := snapshot.LastRun.StartedAt.Format(time.RFC3339)
		response.LastRun = &lastRun
	}
	if !snapshot.NextRunAt.IsZero() {
		nextRun := snapshot.NextRunAt.Format(time.RFC3339)
		response.NextScheduledRun = &nextRun
	}

	RespondWithJSON(w, http.StatusOK, response)
}

// statusLabel выводит статус дашборда из снимка планировщика.
// До первого прогона сервис "idle", после - статус последнего прогона.
func statusLabel(snapshot domain.SchedulerSnapshot) string {
	if snapshot.Phase == domain.PhaseRunning {
		return "running"
	}
	if snapshot.LastRun != nil {
		return string(snapshot.LastRun.Status)
	}
	return "idle"
}

// TriggerRun - обработчик для GET /run
func (h *MonitorHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "TriggerRun"})

	if err := h.runControl.TriggerRun(r.Context()); err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			logger.Warn("Manual run rejected: run already in progress", nil)
			WriteJSONError(w, http.StatusConflict, "Bot is already running")
			return
		}
		logger.Error("Failed to trigger manual run", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to start run")
		return
	}

	logger.Info("Manual run accepted", nil)
	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Bot execution started",
	})
}

// GetListings - обработчик для GET /api/v1/listings
func (h *MonitorHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListings"})

	query := r.URL.Query()

	filters := domain.ListingFilters{
		Source:   query.Get("source"),
		Province: query.Get("province"),
		City:     query.Get("city"),
	}

	var err error
	if filters.PriceMin, err = GetFloatParam(r, "min_price"); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'min_price' parameter")
		return
	}
	if filters.PriceMax, err = GetFloatParam(r, "max_price"); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'max_price' parameter")
		return
	}
	if filters.SurfaceMin, err = GetFloatParam(r, "min_surface"); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'min_surface' parameter")
		return
	}
	if filters.Limit, err = GetLimitOrDefault(r, 100); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}

	listings, err := h.listingStorage.FindRecent(r.Context(), filters)
	if err != nil {
		logger.Error("Failed to retrieve listings", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	// Маппинг в DTO
	listingResponses := make([]ListingResponse, len(listings))
	for i, listing := range listings {
		listingResponses[i] = toListingResponse(listing)
	}

	logger.Info("Successfully retrieved listings", port.Fields{"count": len(listingResponses)})
	RespondWithJSON(w, http.StatusOK, listingResponses)
}

// GetRun - обработчик для GET /api/v1/runs/{runID}
func (h *MonitorHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetRun"})

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := h.runRepo.FindByID(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Run not found")
			return
		}
		logger.Error("Failed to retrieve run", err, port.Fields{"run_id": runID})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRunResponse(*run))
}

// GetRuns - обработчик для GET /api/v1/runs
func (h *MonitorHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetRuns"})

	limit, err := GetLimitOrDefault(r, 50)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}

	runs, err := h.runRepo.FindRecent(r.Context(), limit)
	if err != nil {
		logger.Error("Failed to retrieve run history", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to retrieve run history")
		return
	}

	runResponses := make([]RunResponse, len(runs))
	for i, run := range runs {
		runResponses[i] = toRunResponse(run)
	}

	logger.Info("Successfully retrieved run history", port.Fields{"count": len(runResponses)})
	RespondWithJSON(w, http.StatusOK, runResponses)
}
