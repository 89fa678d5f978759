package feed

import (
	"strings"
	"unicode"
)

// ParseCSV разбирает CSV-выгрузку дилера в сырые записи.
// Первая непустая строка - заголовки. Кавычки внутри поля экранируются удвоением.
// Поле в кавычках не может содержать перевод строки.
func ParseCSV(text string) []map[string]any {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = trimCell(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	headers := parseCSVLine(lines[0])
	records := make([]map[string]any, 0, len(lines)-1)

	for _, line := range lines[1:] {
		values := parseCSVLine(line)
		if allEmpty(values) {
			continue
		}
		entry := make(map[string]any, len(headers))
		for i, header := range headers {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			entry[header] = value
		}
		records = append(records, entry)
	}
	return records
}

func parseCSVLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, trimCell(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, trimCell(current.String()))
}

// trimCell срезает пробелы и BOM (U+FEFF), который Excel пишет в начало выгрузки
func trimCell(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\ufeff'
	})
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
