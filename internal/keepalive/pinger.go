package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"monitoring-service/internal/core/port"
)

const defaultPingInterval = 10 * time.Minute

// Pinger периодически дергает собственный /health, чтобы хостинг
// с усыплением бездействующих сервисов не останавливал процесс.
type Pinger struct {
	serviceURL string
	interval   time.Duration
	httpClient *http.Client
	logger     port.LoggerPort
}

// NewPinger создает новый экземпляр Pinger.
// Нулевой интервал берёт умолчание в 10 минут.
func NewPinger(serviceURL string, interval time.Duration, logger port.LoggerPort) *Pinger {
	if interval <= 0 {
		interval = defaultPingInterval
	}
	return &Pinger{
		serviceURL: serviceURL,
		interval:   interval,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.WithFields(port.Fields{"component": "keepalive"}),
	}
}

// Start блокируется до отмены контекста. Первый пинг уходит через
// интервал, не сразу: на старте сервис и так проснулся.
func (p *Pinger) Start(ctx context.Context) error {
	p.logger.Info("Keep-alive pinger started", port.Fields{
		"service_url": p.serviceURL,
		"interval":    p.interval.String(),
	})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ping(ctx)
		case <-ctx.Done():
			p.logger.Info("Keep-alive pinger stopped.", nil)
			return nil
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	healthURL := fmt.Sprintf("%s/health", p.serviceURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		p.logger.Error("Failed to create keep-alive request", err, port.Fields{"url": healthURL})
		return
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("Keep-alive ping failed", port.Fields{"url": healthURL, "error": err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("Keep-alive ping returned non-OK status", port.Fields{
			"url":    healthURL,
			"status": resp.StatusCode,
		})
		return
	}

	p.logger.Debug("Keep-alive ping successful", nil)
}
