package feed

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"
)

// SignatureInput - поля записи, которые участвуют в отпечатке
type SignatureInput struct {
	VIN   *string
	Title *string
	Price *int
	Phone *string
}

// порядок полей фиксирован и определяет сериализацию
type signaturePayload struct {
	VIN   *string `json:"vin"`
	Title *string `json:"t"`
	Price *int    `json:"p"`
	Phone *string `json:"ph"`
}

// Signature вычисляет sha256-отпечаток записи в hex.
// Регистр и пробелы в title и оформление телефона на результат не влияют.
func Signature(in SignatureInput) string {
	payload := signaturePayload{
		VIN:   nonEmpty(trimmed(in.VIN)),
		Title: nonEmpty(collapseTitle(in.Title)),
		Price: in.Price,
		Phone: nonEmpty(digitsOnly(in.Phone)),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// кодирование структуры из строк и int не может завершиться ошибкой
	_ = enc.Encode(payload)

	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:])
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// collapseTitle переводит в нижний регистр и схлопывает серии пробельных символов в один пробел
func collapseTitle(s *string) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(len(*s))
	inSpace := false
	for _, r := range strings.ToLower(*s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func digitsOnly(s *string) string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range *s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
