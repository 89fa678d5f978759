package postgres_adapter

import (
	"fmt"
	"strings"

	"car-finder/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

func (qb *queryBuilder) AddIntFilter(fieldName string, min *int, max *int) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// build создает WHERE и аргументы запроса
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern - шаблон ILIKE "содержит", спецсимволы пользователя экранируются
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// applySearchFilters разбирает параметры поиска
func applySearchFilters(q domain.SearchQuery) (string, []interface{}) {
	qb := newQueryBuilder()

	if q.Filters.Make != nil {
		qb.addCondition("%s ILIKE $%d", "make", containsPattern(*q.Filters.Make))
	}
	if q.Filters.Model != nil {
		qb.addCondition("%s ILIKE $%d", "model", containsPattern(*q.Filters.Model))
	}
	qb.AddIntFilter("year", q.Filters.MinYear, nil)
	qb.AddIntFilter("price", nil, q.Filters.MaxPrice)
	qb.AddIntFilter("mileage", nil, q.Filters.MaxMiles)

	if q.Near != nil {
		prefix := nearPrefix(q.Near.Lat, q.Near.Lon, q.Near.Precision)
		qb.addCondition("%s LIKE $%d", "geohash", likeEscaper.Replace(prefix)+"%")
	}

	return qb.build()
}

// при равенстве ключа порядок фиксирован: свежие сначала, затем по id
var orderClauses = map[string]string{
	domain.SortUpdatedAtDesc: "ORDER BY updated_at DESC, id ASC",
	domain.SortPriceAsc:      "ORDER BY price ASC NULLS LAST, updated_at DESC, id ASC",
	domain.SortPriceDesc:     "ORDER BY price DESC NULLS LAST, updated_at DESC, id ASC",
	domain.SortMileageAsc:    "ORDER BY mileage ASC NULLS LAST, updated_at DESC, id ASC",
	domain.SortYearDesc:      "ORDER BY year DESC NULLS LAST, updated_at DESC, id ASC",
}

// buildSearchQueries возвращает запрос количества, запрос страницы и аргументы.
// Аргументы запроса страницы - это args плюс LIMIT и OFFSET.
func buildSearchQueries(q domain.SearchQuery) (string, string, []interface{}) {
	where, args := applySearchFilters(q)

	order, ok := orderClauses[q.Sort]
	if !ok {
		order = orderClauses[domain.SortUpdatedAtDesc]
	}

	countQuery := "SELECT COUNT(*) FROM listings " + where
	pageQuery := fmt.Sprintf("SELECT %s FROM listings %s %s LIMIT $%d OFFSET $%d",
		listingColumns, where, order, len(args)+1, len(args)+2)

	return countQuery, pageQuery, args
}
