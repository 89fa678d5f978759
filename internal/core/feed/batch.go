package feed

import "car-finder/internal/core/domain"

// NormalizeAll нормализует записи пачки, отбрасывая записи без vin и title
func NormalizeAll(raw []map[string]any) []domain.NormalizedListing {
	out := make([]domain.NormalizedListing, 0, len(raw))
	for _, r := range raw {
		if rec, ok := Normalize(r); ok {
			out = append(out, *rec)
		}
	}
	return out
}

// Dedupe оставляет по одной записи на отпечаток, побеждает первая встреченная
func Dedupe(records []domain.NormalizedListing) []domain.NormalizedListing {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.NormalizedListing, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.HashSignature]; dup {
			continue
		}
		seen[rec.HashSignature] = struct{}{}
		out = append(out, rec)
	}
	return out
}
