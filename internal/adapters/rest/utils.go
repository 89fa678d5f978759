package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// writeDomainError переводит доменные ошибки в HTTP-статусы.
// Текст 4xx уходит клиенту, детали 5xx только в лог.
func writeDomainError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrUnsupportedContentType),
		errors.Is(err, domain.ErrNoValidRecords):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrOwnershipConflict),
		errors.Is(err, domain.ErrDealerExists):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrDealerNotFound),
		errors.Is(err, domain.ErrSavedSearchNotFound),
		errors.Is(err, domain.ErrVehicleNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("Unhandled error", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseUUIDParam читает UUID из параметра маршрута
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// parseFiniteNumber: пустое или нечисловое значение - отсутствует
func parseFiniteNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parsePositiveInt: нет значения или не число - по умолчанию, иначе floor и ограничение [min, max]
func parsePositiveInt(value string, defaultValue, min, max int) int {
	f, ok := parseFiniteNumber(value)
	if !ok {
		return defaultValue
	}
	f = math.Floor(f)
	if f < float64(min) {
		return min
	}
	if f > float64(max) {
		return max
	}
	return int(f)
}

// parseLowerBound - нижняя граница фильтра. Дробь округляется вверх, сравнение с целыми столбцами не меняется.
func parseLowerBound(value string) *int {
	f, ok := parseFiniteNumber(value)
	if !ok {
		return nil
	}
	v := int(clampFloat(math.Ceil(f)))
	return &v
}

// parseUpperBound - верхняя граница фильтра, дробь округляется вниз
func parseUpperBound(value string) *int {
	f, ok := parseFiniteNumber(value)
	if !ok {
		return nil
	}
	v := int(clampFloat(math.Floor(f)))
	return &v
}

func clampFloat(f float64) float64 {
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return f
}

// parseNear разбирает "lat,lon"; некорректная точка игнорируется
func parseNear(value, precision string) *domain.GeoPoint {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, okLat := parseFiniteNumber(parts[0])
	lon, okLon := parseFiniteNumber(parts[1])
	if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil
	}
	return &domain.GeoPoint{
		Lat:       lat,
		Lon:       lon,
		Precision: parsePositiveInt(precision, domain.DefaultGeohashPrecision, 1, 9),
	}
}

func optionalQueryString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}
