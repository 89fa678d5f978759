package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotifyDaily  = "daily"
	NotifyWeekly = "weekly"
	NotifyOff    = "off"
)

const DefaultRadiusMiles = 50

type SearchFilters struct {
	Make     *string `json:"make,omitempty"`
	Model    *string `json:"model,omitempty"`
	MinYear  *int    `json:"minYear,omitempty"`
	MaxPrice *int    `json:"maxPrice,omitempty"`
	MaxMiles *int    `json:"maxMiles,omitempty"`
}

type SavedSearch struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	UserEmail      *string
	Filters        SearchFilters
	Zip            *string
	RadiusMiles    int
	Notify         string
	LastNotifiedAt *time.Time
	CreatedAt      time.Time
}

// IsDue - пора ли отправлять уведомление по сохраненному поиску
func (s *SavedSearch) IsDue(now time.Time) bool {
	switch s.Notify {
	case NotifyDaily:
		return s.LastNotifiedAt == nil || !s.LastNotifiedAt.After(now.Add(-24*time.Hour))
	case NotifyWeekly:
		return s.LastNotifiedAt == nil || !s.LastNotifiedAt.After(now.Add(-7*24*time.Hour))
	default:
		return false
	}
}

// AlertEmail - письмо с подборкой, уходит в очередь почтового сервиса
type AlertEmail struct {
	SearchID uuid.UUID
	To       string
	From     string
	Subject  string
	Text     string
	HTML     string
}

type AlertError struct {
	SearchID uuid.UUID
	Message  string
}

// AlertsReport - итог рассылки по сохраненным поискам
type AlertsReport struct {
	Processed  int
	EmailsSent int
	Skipped    int
	Errors     []AlertError
}
