package pisosfetcher

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

const sourceName = "pisos"

// PisosFetcherAdapter отвечает за все взаимодействия с порталом Pisos.com
type PisosFetcherAdapter struct {
	// родительский коллектор, который разделяет лимиты
	collector *colly.Collector
	baseURL   string
}

// NewPisosFetcherAdapter - конструктор
func NewPisosFetcherAdapter(baseURL string, requestDelay time.Duration) (*PisosFetcherAdapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("PisosFetcherAdapter: invalid base URL %q: %w", baseURL, err)
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
		return nil, fmt.Errorf("PisosFetcherAdapter: failed to set limit rule: %w", err)
	}

	return &PisosFetcherAdapter{
		collector: c,
		baseURL:   baseURL,
	}, nil
}

// Name возвращает идентификатор источника
func (a *PisosFetcherAdapter) Name() string {
	return sourceName
}
