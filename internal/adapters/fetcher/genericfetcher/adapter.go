package genericfetcher

import (
	"fmt"
	"net/url"
	"time"

	"monitoring-service/internal/core/domain"

	"github.com/gocolly/colly/v2"
)

// GenericFetcherAdapter отвечает за взаимодействие с порталом,
// описанным конфигурацией PortalConfig
type GenericFetcherAdapter struct {
	// родительский коллектор, который разделяет лимиты
	collector *colly.Collector
	config    PortalConfig
}

// NewGenericFetcherAdapter - конструктор
func NewGenericFetcherAdapter(config PortalConfig, requestDelay time.Duration) (*GenericFetcherAdapter, error) {
	if config.Name == "" {
		return nil, &domain.ConfigurationError{Source: "generic", Reason: "portal config needs a name"}
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Hostname() == "" {
		return nil, &domain.ConfigurationError{
			Source: config.Name,
			Reason: fmt.Sprintf("invalid base URL %q", config.BaseURL),
		}
	}

	if config.OperationType == "" {
		config.OperationType = domain.OperationSale
	}

	// родительский коллектор
	c := colly.NewCollector(colly.AllowedDomains(u.Hostname()), colly.AllowURLRevisit())
	c.SetRequestTimeout(20 * time.Second)

	// colly по умолчанию игнорирует robots.txt, здесь запреты портала соблюдаются
	c.IgnoreRobotsTxt = false

	// Эти правила будут наследоваться всеми клонами коллектора
	err = c.Limit(&colly.LimitRule{
		DomainGlob: u.Hostname(),

		// Параллелизм на уровне HTTP-запросов
		Parallelism: 1,

		// случайная задержка после завершения предыдущего запроса
		RandomDelay: requestDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("GenericFetcherAdapter: failed to set limit rule for %s: %w", config.Name, err)
	}

	return &GenericFetcherAdapter{
		collector: c,
		config:    config,
	}, nil
}

// Name возвращает идентификатор источника
func (a *GenericFetcherAdapter) Name() string {
	return a.config.Name
}
