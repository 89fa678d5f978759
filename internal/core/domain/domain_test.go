package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrincipalCanManageDealer(t *testing.T) {
	dealerID := uuid.New()

	var anonymous *Principal
	assert.False(t, anonymous.CanManageDealer(dealerID))

	staff := &Principal{UserID: uuid.New(), Role: RoleStaff}
	assert.True(t, staff.CanManageDealer(dealerID))

	member := &Principal{UserID: uuid.New(), Role: RoleDealer, DealerIDs: []uuid.UUID{dealerID}}
	assert.True(t, member.CanManageDealer(dealerID))
	assert.False(t, member.CanManageDealer(uuid.New()))
}

func TestSavedSearchIsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time { ts := now.Add(-d); return &ts }

	tests := []struct {
		name   string
		search SavedSearch
		want   bool
	}{
		{"daily never notified", SavedSearch{Notify: NotifyDaily}, true},
		{"daily notified 23h ago", SavedSearch{Notify: NotifyDaily, LastNotifiedAt: ago(23 * time.Hour)}, false},
		{"daily notified exactly 24h ago", SavedSearch{Notify: NotifyDaily, LastNotifiedAt: ago(24 * time.Hour)}, true},
		{"weekly notified 3 days ago", SavedSearch{Notify: NotifyWeekly, LastNotifiedAt: ago(72 * time.Hour)}, false},
		{"weekly notified 8 days ago", SavedSearch{Notify: NotifyWeekly, LastNotifiedAt: ago(8 * 24 * time.Hour)}, true},
		{"off", SavedSearch{Notify: NotifyOff}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.search.IsDue(now))
		})
	}
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("  Acme Motors "), FoldKey("ACME MOTORS"))
	assert.Equal(t, FoldKey("Sales@Dealer.com"), FoldKey("sales@dealer.com"))
	assert.Equal(t, "dealer:"+uuid.Nil.String(), DealerSource(uuid.Nil))
}

func TestSearchQueryNormalized(t *testing.T) {
	q := SearchQuery{
		Page:     5000,
		PageSize: 500,
		Sort:     "random",
		Filters:  SearchFilters{Make: strPtr("  "), Model: strPtr(" civic ")},
		Near:     &GeoPoint{Lat: 1, Lon: 2, Precision: 42},
	}.Normalized()
	assert.Equal(t, MaxPage, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, SortUpdatedAtDesc, q.Sort)
	assert.Nil(t, q.Filters.Make)
	assert.Equal(t, "civic", *q.Filters.Model)
	assert.Equal(t, 9, q.Near.Precision)

	q = SearchQuery{Page: -3, Sort: SortPriceAsc}.Normalized()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)
	assert.Equal(t, SortPriceAsc, q.Sort)
	assert.Equal(t, 0, q.Offset())

	q = SearchQuery{Page: 3, PageSize: 20}.Normalized()
	assert.Equal(t, 40, q.Offset())
}

func strPtr(s string) *string { return &s }
