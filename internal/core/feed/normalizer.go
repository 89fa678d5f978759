package feed

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"car-finder/internal/core/domain"
)

// maxEpochMillis - предел диапазона дат ECMAScript (±100 000 000 суток от эпохи)
const maxEpochMillis = 8.64e15

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Normalize приводит сырую запись фида к каноническому виду.
// Возвращает false, если у записи нет ни vin, ни title.
func Normalize(raw map[string]any) (*domain.NormalizedListing, bool) {
	if raw == nil {
		return nil, false
	}

	vin := toOptionalString(pickFirst(raw, FieldVIN))
	title := toOptionalString(pickFirst(raw, FieldTitle))
	if vin == nil && title == nil {
		return nil, false
	}

	price := toOptionalInt(pickFirst(raw, FieldPrice))
	phone := toOptionalString(pickFirst(raw, FieldPhone))

	rec := &domain.NormalizedListing{
		ListingFields: domain.ListingFields{
			VIN:          vin,
			Title:        title,
			Year:         toOptionalInt(pickFirst(raw, FieldYear)),
			Make:         toOptionalString(pickFirst(raw, FieldMake)),
			Model:        toOptionalString(pickFirst(raw, FieldModel)),
			Trim:         toOptionalString(pickFirst(raw, FieldTrim)),
			Price:        price,
			Mileage:      toOptionalInt(pickFirst(raw, FieldMileage)),
			Body:         toOptionalString(pickFirst(raw, FieldBody)),
			Drivetrain:   toOptionalString(pickFirst(raw, FieldDrivetrain)),
			Transmission: toOptionalString(pickFirst(raw, FieldTransmission)),
			Fuel:         toOptionalString(pickFirst(raw, FieldFuel)),
			ColorExt:     toOptionalString(pickFirst(raw, FieldColorExt)),
			ColorInt:     toOptionalString(pickFirst(raw, FieldColorInt)),
			City:         toOptionalString(pickFirst(raw, FieldCity)),
			State:        toOptionalString(pickFirst(raw, FieldState)),
			Lat:          toOptionalFloat(pickFirst(raw, FieldLat)),
			Lon:          toOptionalFloat(pickFirst(raw, FieldLon)),
			URL:          toOptionalString(pickFirst(raw, FieldURL)),
			Phone:        phone,
			Images:       toImages(pickFirst(raw, FieldImages)),
			PostedAt:     toOptionalDate(pickFirst(raw, FieldPostedAt)),
		},
		UpdatedAt: toOptionalDate(pickFirst(raw, FieldUpdatedAt)),
	}

	rec.HashSignature = Signature(SignatureInput{VIN: vin, Title: title, Price: price, Phone: phone})

	sourceID := rec.HashSignature
	if s := toOptionalString(pickFirst(raw, FieldSourceID)); s != nil {
		sourceID = *s
	}
	rec.SourceID = truncateRunes(sourceID, domain.SourceIDMaxLen)

	return rec, true
}

func toOptionalString(v any) *string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		return &s
	case json.Number:
		if f, err := val.Float64(); err == nil {
			s := formatNumber(f)
			return &s
		}
		s := val.String()
		return &s
	case float64:
		s := formatNumber(val)
		return &s
	case int:
		s := strconv.Itoa(val)
		return &s
	case int64:
		s := strconv.FormatInt(val, 10)
		return &s
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toOptionalFloat(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return parseNumeric(val.String())
		}
		f = parsed
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		return parseNumeric(val)
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseNumeric выбрасывает все, кроме цифр, точки и минуса, и разбирает остаток
func parseNumeric(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// toOptionalInt округляет половину вверх, как Math.round
func toOptionalInt(v any) *int {
	f := toOptionalFloat(v)
	if f == nil {
		return nil
	}
	rounded := math.Floor(*f + 0.5)
	if rounded > math.MaxInt32 || rounded < math.MinInt32 {
		return nil
	}
	n := int(rounded)
	return &n
}

func toOptionalDate(v any) *time.Time {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				t = t.UTC()
				return &t
			}
		}
		return nil
	case json.Number, float64, int, int64:
		ms := toOptionalFloat(val)
		if ms == nil || *ms == 0 || math.Abs(*ms) > maxEpochMillis {
			return nil
		}
		t := time.UnixMilli(int64(*ms)).UTC()
		return &t
	}
	return nil
}

func toImages(v any) []string {
	var images []string
	switch val := v.(type) {
	case []any:
		for _, entry := range val {
			if s := toOptionalString(entry); s != nil {
				images = append(images, *s)
			}
		}
	case []string:
		for _, entry := range val {
			if s := toOptionalString(entry); s != nil {
				images = append(images, *s)
			}
		}
	default:
		s := toOptionalString(val)
		if s == nil {
			return nil
		}
		parts := strings.FieldsFunc(*s, func(r rune) bool {
			return r == '|' || r == ',' || r == ';'
		})
		for _, part := range parts {
			if p := strings.TrimSpace(part); p != "" {
				images = append(images, p)
			}
		}
	}
	if len(images) == 0 {
		return nil
	}
	return images
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
