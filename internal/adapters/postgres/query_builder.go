package postgres_adapter

import (
	"fmt"
	"monitoring-service/internal/core/domain"
	"strings"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: make([]string, 0),
		args:       make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// AddFloatFilter принимает указатели на границы диапазона
func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// build создает финальную WHERE-часть запроса
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// applyListingFilters разбирает фильтры витрины и строит условия запроса
func applyListingFilters(filters domain.ListingFilters) (string, []interface{}) {
	qb := newQueryBuilder()

	// Фильтр по источнику (точное совпадение)
	if filters.Source != "" {
		qb.addCondition("%s = $%d", "source", filters.Source)
	}

	// Местоположение сохраняется как свободный текст порталов,
	// поэтому сравниваем без учета регистра
	if filters.Province != "" {
		qb.addCondition("%s ILIKE $%d", "province", filters.Province)
	}
	if filters.City != "" {
		qb.addCondition("%s ILIKE $%d", "city", filters.City)
	}

	qb.AddFloatFilter("price", filters.PriceMin, filters.PriceMax)
	qb.AddFloatFilter("surface_area", filters.SurfaceMin, nil)

	return qb.build()
}
