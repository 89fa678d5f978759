package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"car-finder/internal/core/domain"
)

const (
	ContentTypeJSON   = "application/json"
	ContentTypeCSV    = "text/csv"
	ContentTypeAltCSV = "application/csv"
)

// IsCSV / IsJSON проверяют заголовок Content-Type по вхождению, параметры игнорируются
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), ContentTypeJSON)
}

func IsCSV(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, ContentTypeCSV) || strings.Contains(ct, ContentTypeAltCSV)
}

// ParsePayload разбирает тело запроса в сырые записи.
// JSON: массив записей или объект с массивом "listings". CSV: текст с заголовком.
func ParsePayload(contentType string, body []byte) ([]map[string]any, error) {
	switch {
	case IsJSON(contentType):
		return parseJSON(body)
	case IsCSV(contentType):
		return ParseCSV(string(body)), nil
	default:
		return nil, fmt.Errorf("%w: please upload JSON or CSV data", domain.ErrUnsupportedContentType)
	}
}

func parseJSON(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", domain.ErrInvalidPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", domain.ErrInvalidPayload)
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		listings, ok := v["listings"].([]any)
		if !ok {
			return nil, errShape
		}
		items = listings
	default:
		return nil, errShape
	}

	records := make([]map[string]any, len(items))
	for i, item := range items {
		// элементы, не являющиеся объектами, отсеются нормализатором
		records[i], _ = item.(map[string]any)
	}
	return records, nil
}

var errShape = fmt.Errorf(`%w: JSON payload must be an array of listings or an object with a "listings" array`, domain.ErrInvalidPayload)
