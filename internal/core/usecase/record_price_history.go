package usecase

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/feed"
	"car-finder/internal/core/port"
)

// RecordPriceHistoryUseCase добавляет снимок цены для объявлений,
// у которых текущая цена отличается от последней записанной
type RecordPriceHistoryUseCase struct {
	storage   port.PriceHistoryStoragePort
	publisher port.PriceEventPublisherPort
	now       func() time.Time
}

func NewRecordPriceHistoryUseCase(storage port.PriceHistoryStoragePort, publisher port.PriceEventPublisherPort) *RecordPriceHistoryUseCase {
	return &RecordPriceHistoryUseCase{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

func (uc *RecordPriceHistoryUseCase) Execute(ctx context.Context) (*domain.SnapshotReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "RecordPriceHistory"})

	now := uc.now().UTC()
	report := &domain.SnapshotReport{Timestamp: now}

	states, err := uc.storage.ListListingsForSnapshot(ctx)
	if err != nil {
		ucLogger.Error("Failed to load listings for snapshot", err, nil)
		return nil, fmt.Errorf("failed to load listings for snapshot: %w", err)
	}
	ucLogger.Info("Snapshot run started", port.Fields{"listings": len(states)})

	for _, st := range states {
		report.Processed++

		if st.Price == nil {
			report.Skipped++
			continue
		}

		current := feed.Signature(feed.SignatureInput{VIN: st.VIN, Title: st.Title, Price: st.Price, Phone: st.Phone})
		if st.LatestPrice != nil {
			latest := feed.Signature(feed.SignatureInput{VIN: st.VIN, Title: st.Title, Price: st.LatestPrice, Phone: st.Phone})
			if latest == current {
				report.Skipped++
				continue
			}
		}

		if err := uc.storage.InsertSnapshot(ctx, st.ID, *st.Price, now); err != nil {
			ucLogger.Error("Failed to insert price snapshot", err, port.Fields{"listing_id": st.ID.String()})
			return nil, fmt.Errorf("failed to insert snapshot for listing %s: %w", st.ID, err)
		}
		report.Inserted++

		event := domain.PriceChangedEvent{ListingID: st.ID, PreviousPrice: st.LatestPrice, Price: *st.Price, CapturedAt: now}
		if err := uc.publisher.PublishPriceChanged(ctx, event); err != nil {
			ucLogger.Error("Failed to publish price change", err, port.Fields{"listing_id": st.ID.String()})
		}
	}

	ucLogger.Info("Snapshot run finished", port.Fields{
		"processed": report.Processed,
		"inserted":  report.Inserted,
		"skipped":   report.Skipped,
	})
	return report, nil
}
