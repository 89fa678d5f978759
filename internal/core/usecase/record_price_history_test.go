package usecase

import (
	"context"
	"testing"
	"time"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(store *fakeListingStore, title string, price *int) uuid.UUID {
	id := uuid.New()
	store.put(domain.Listing{
		ID:            id,
		ListingFields: domain.ListingFields{Title: strPtr(title), Price: price, Phone: strPtr("555-0100")},
		UpdatedAt:     time.Now(),
	})
	return id
}

func TestRecordPriceHistoryIsIdempotent(t *testing.T) {
	store := newFakeListingStore()
	publisher := &fakeReporter{}
	uc := NewRecordPriceHistoryUseCase(store, publisher)
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	priced := seedListing(store, "Civic", intPtr(10000))
	seedListing(store, "Accord", intPtr(20000))
	seedListing(store, "No price", nil)

	ctx := context.Background()
	first, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 1, first.Skipped)
	assert.Equal(t, fixed, first.Timestamp)

	second, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Skipped)

	history, _ := store.GetHistory(ctx, priced)
	require.Len(t, history, 1)
	assert.Equal(t, 10000, history[0].Price)
	assert.Equal(t, fixed, history[0].CapturedAt)
	assert.Len(t, publisher.events, 2)
}

func TestRecordPriceHistoryAppendsOnPriceChange(t *testing.T) {
	store := newFakeListingStore()
	publisher := &fakeReporter{}
	uc := NewRecordPriceHistoryUseCase(store, publisher)
	ctx := context.Background()

	id := seedListing(store, "Civic", intPtr(10000))
	_, err := uc.Execute(ctx)
	require.NoError(t, err)

	l, _ := store.GetByID(ctx, id)
	l.Price = intPtr(9500)
	store.put(*l)

	report, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)

	history, _ := store.GetHistory(ctx, id)
	require.Len(t, history, 2)
	assert.Equal(t, 9500, history[1].Price)

	last := publisher.events[len(publisher.events)-1]
	assert.Equal(t, id, last.ListingID)
	assert.Equal(t, 10000, *last.PreviousPrice)
	assert.Equal(t, 9500, last.Price)
}

func TestGetPriceHistory(t *testing.T) {
	store := newFakeListingStore()
	uc := NewGetPriceHistoryUseCase(store, store)
	ctx := context.Background()

	_, err := uc.Execute(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	id := seedListing(store, "Civic", intPtr(1))
	history, err := uc.Execute(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}
