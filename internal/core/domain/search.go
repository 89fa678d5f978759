package domain

import "strings"

const (
	SortUpdatedAtDesc = "updatedAt_desc"
	SortPriceAsc      = "price_asc"
	SortPriceDesc     = "price_desc"
	SortMileageAsc    = "mileage_asc"
	SortYearDesc      = "year_desc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 60
	MaxPage         = 1000

	DefaultGeohashPrecision = 5
)

// SearchQuery - нормализованные параметры поиска объявлений
type SearchQuery struct {
	Filters  SearchFilters
	Near     *GeoPoint
	Page     int
	PageSize int
	Sort     string
}

type SearchResult struct {
	Listings   []Listing
	TotalCount int
}

// GeoPoint - точка для поиска поблизости, сравнение идет по префиксу geohash заданной длины
type GeoPoint struct {
	Lat       float64
	Lon       float64
	Precision int
}

var knownSorts = map[string]struct{}{
	SortUpdatedAtDesc: {},
	SortPriceAsc:      {},
	SortPriceDesc:     {},
	SortMileageAsc:    {},
	SortYearDesc:      {},
}

// IsKnownSort - поддерживается ли порядок сортировки
func IsKnownSort(sort string) bool {
	_, ok := knownSorts[sort]
	return ok
}

// Normalized ограничивает пагинацию и подставляет значения по умолчанию
func (q SearchQuery) Normalized() SearchQuery {
	q.Page = clampInt(q.Page, 1, MaxPage, 1)
	q.PageSize = clampInt(q.PageSize, 1, MaxPageSize, DefaultPageSize)
	if !IsKnownSort(q.Sort) {
		q.Sort = SortUpdatedAtDesc
	}
	q.Filters.Make = trimmedOrNil(q.Filters.Make)
	q.Filters.Model = trimmedOrNil(q.Filters.Model)
	if q.Near != nil {
		near := *q.Near
		near.Precision = clampInt(near.Precision, 1, 9, DefaultGeohashPrecision)
		q.Near = &near
	}
	return q
}

// Offset - число пропускаемых записей для текущей страницы
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// clampInt: 0 - значение не задано
func clampInt(v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
