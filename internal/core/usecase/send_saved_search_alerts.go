package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const alertMatchesLimit = 10

// AlertsConfig - параметры писем
type AlertsConfig struct {
	SiteURL   string
	FromEmail string
}

// SendSavedSearchAlertsUseCase рассылает подборки по сохраненным поискам, которым пора
type SendSavedSearchAlertsUseCase struct {
	searches port.SavedSearchRepositoryPort
	listings port.ListingReaderPort
	sender   port.AlertSenderPort
	cfg      AlertsConfig
	printer  *message.Printer
	now      func() time.Time
}

func NewSendSavedSearchAlertsUseCase(searches port.SavedSearchRepositoryPort, listings port.ListingReaderPort, sender port.AlertSenderPort, cfg AlertsConfig) *SendSavedSearchAlertsUseCase {
	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://localhost:3000"
	}
	return &SendSavedSearchAlertsUseCase{
		searches: searches,
		listings: listings,
		sender:   sender,
		cfg:      cfg,
		printer:  message.NewPrinter(language.English),
		now:      time.Now,
	}
}

func (uc *SendSavedSearchAlertsUseCase) Execute(ctx context.Context) (*domain.AlertsReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SendSavedSearchAlerts"})

	now := uc.now().UTC()
	candidates, err := uc.searches.ListNotifiable(ctx)
	if err != nil {
		ucLogger.Error("Failed to load saved searches", err, nil)
		return nil, fmt.Errorf("failed to load saved searches: %w", err)
	}

	due := make([]domain.SavedSearch, 0, len(candidates))
	for _, s := range candidates {
		if s.IsDue(now) {
			due = append(due, s)
		}
	}

	report := &domain.AlertsReport{Processed: len(due), Errors: []domain.AlertError{}}
	for i := range due {
		search := &due[i]
		if search.UserEmail == nil || *search.UserEmail == "" {
			report.Skipped++
			continue
		}
		if err := uc.notify(ctx, search, now); err != nil {
			ucLogger.Warn("Alert failed", port.Fields{"search_id": search.ID.String(), "error": err.Error()})
			report.Errors = append(report.Errors, domain.AlertError{SearchID: search.ID, Message: err.Error()})
			continue
		}
		report.EmailsSent++
	}

	ucLogger.Info("Alerts run finished", port.Fields{
		"processed":   report.Processed,
		"emails_sent": report.EmailsSent,
		"skipped":     report.Skipped,
		"errors":      len(report.Errors),
	})
	return report, nil
}

func (uc *SendSavedSearchAlertsUseCase) notify(ctx context.Context, search *domain.SavedSearch, now time.Time) error {
	result, err := uc.listings.Search(ctx, domain.SearchQuery{
		Filters:  search.Filters,
		Page:     1,
		PageSize: alertMatchesLimit,
		Sort:     domain.SortUpdatedAtDesc,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	email := uc.RenderAlert(search, result.Listings)
	email.To = *search.UserEmail
	if err := uc.sender.SendAlert(ctx, email); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	if err := uc.searches.MarkNotified(ctx, search.ID, now); err != nil {
		return fmt.Errorf("mark notified failed: %w", err)
	}
	return nil
}

// RenderAlert собирает тему и тело письма для подборки
func (uc *SendSavedSearchAlertsUseCase) RenderAlert(search *domain.SavedSearch, listings []domain.Listing) domain.AlertEmail {
	desc := uc.DescribeFilters(search.Filters)

	subject := "Saved search update for " + desc
	if len(listings) > 0 {
		subject = fmt.Sprintf("%d new matches for %s", len(listings), desc)
	}

	var text, body strings.Builder
	text.WriteString("Saved search update for " + desc + "\n\n")
	body.WriteString(`<h1 style="font-family:Arial,sans-serif;font-size:18px;margin-bottom:12px;">Saved search update</h1>`)
	body.WriteString(`<p style="font-family:Arial,sans-serif;font-size:14px;margin:0 0 12px 0;">Here are the latest matches for <strong>` + html.EscapeString(desc) + `</strong>.</p>`)

	if len(listings) == 0 {
		text.WriteString("No new matches right now. We will keep checking for you.")
		body.WriteString(`<p style="font-family:Arial,sans-serif;font-size:14px;margin:0 0 12px 0;">No new matches right now. We'll keep checking for you.</p>`)
	} else {
		body.WriteString(`<ul style="padding-left:16px;font-family:Arial,sans-serif;font-size:14px;">`)
		for i, l := range listings {
			title, price, location, url := uc.listingLine(&l)
			if i > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(title + "\n" + price)
			if location != "" {
				text.WriteString(" • " + location)
			}
			text.WriteString("\n" + url)

			body.WriteString(`<li style="margin-bottom:10px;"><strong>` + html.EscapeString(title) + `</strong><br/>` + html.EscapeString(price))
			if location != "" {
				body.WriteString(" • " + html.EscapeString(location))
			}
			body.WriteString(`<br/><a href="` + html.EscapeString(url) + `" target="_blank">View listing</a></li>`)
		}
		body.WriteString(`</ul>`)
	}

	text.WriteString("\n\nManage alerts: " + uc.cfg.SiteURL)
	site := html.EscapeString(uc.cfg.SiteURL)
	body.WriteString(`<p style="font-family:Arial,sans-serif;font-size:12px;color:#555;">Manage alerts at <a href="` + site + `">` + site + `</a>.</p>`)

	return domain.AlertEmail{
		SearchID: search.ID,
		From:     uc.cfg.FromEmail,
		Subject:  subject,
		Text:     text.String(),
		HTML:     body.String(),
	}
}

// DescribeFilters: "Honda Civic • ≥2015 • ≤$25,000 • ≤120,000 mi"
func (uc *SendSavedSearchAlertsUseCase) DescribeFilters(f domain.SearchFilters) string {
	var parts []string
	if mm := joinNonEmpty(" ", f.Make, f.Model); mm != "" {
		parts = append(parts, mm)
	}
	if f.MinYear != nil {
		parts = append(parts, fmt.Sprintf("≥%d", *f.MinYear))
	}
	if f.MaxPrice != nil {
		parts = append(parts, "≤$"+uc.printer.Sprintf("%d", *f.MaxPrice))
	}
	if f.MaxMiles != nil {
		parts = append(parts, "≤"+uc.printer.Sprintf("%d", *f.MaxMiles)+" mi")
	}
	return strings.Join(parts, " • ")
}

func (uc *SendSavedSearchAlertsUseCase) listingLine(l *domain.Listing) (title, price, location, url string) {
	var year *string
	if l.Year != nil {
		y := fmt.Sprintf("%d", *l.Year)
		year = &y
	}
	title = joinNonEmpty(" ", year, l.Make, l.Model)
	if title == "" {
		title = "Listing"
	}
	price = "Price on request"
	if l.Price != nil {
		price = "$" + uc.printer.Sprintf("%d", *l.Price)
	}
	location = joinNonEmpty(", ", l.City, l.State)
	url = uc.cfg.SiteURL
	if l.URL != nil && *l.URL != "" {
		url = *l.URL
	}
	return title, price, location, url
}

func joinNonEmpty(sep string, values ...*string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			parts = append(parts, strings.TrimSpace(*v))
		}
	}
	return strings.Join(parts, sep)
}
