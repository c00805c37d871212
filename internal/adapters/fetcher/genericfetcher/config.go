package genericfetcher

// PortalConfig описывает портал, у которого нет выделенного адаптера.
// Источник целиком задаётся данными: базовый адрес, шаблон пути поиска,
// маппинг параметров и CSS-селекторы карточки выдачи.
type PortalConfig struct {
	Name    string
	BaseURL string

	// Шаблон пути поиска с плейсхолдерами {province} и {city},
	// например "/es/comprar/viviendas/{province}/{city}"
	SearchPath string

	// Маппинг фильтров профиля на query-параметры портала,
	// например {"price_max": "precioMaximo"}
	Params map[string]string

	// Селекторы элементов карточки. Отсутствующий ключ берётся из умолчаний
	Selectors map[string]string

	// Тип сделки и тип жилья всех объявлений портала. Банковские витрины
	// продают собственный фонд, у них эти поля не читаются из карточки
	OperationType string
	PropertyType  string
}

// Умолчания покрывают распространённую вёрстку каталогов недвижимости
var defaultSelectors = map[string]string{
	"item":      `article, .property-card, .listing-item`,
	"link":      `a[href]`,
	"title":     `h2, h3, .title`,
	"price":     `.price, [class*="price"]`,
	"location":  `.location, address`,
	"surface":   `[class*="m2"], [class*="surface"]`,
	"bedrooms":  `[class*="room"], [class*="hab"]`,
	"bathrooms": `[class*="bath"], [class*="baño"]`,
	"image":     `img`,
	"next_page": `a.next, a[rel="next"], .pagination .next a`,
}

func (c PortalConfig) selector(key string) string {
	if sel, ok := c.Selectors[key]; ok && sel != "" {
		return sel
	}
	return defaultSelectors[key]
}
