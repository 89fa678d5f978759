package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/feed"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"
)

// SyncDealerFeedsUseCase скачивает фиды дилеров и прогоняет их через загрузку пачки
type SyncDealerFeedsUseCase struct {
	dealers port.DealerRepositoryPort
	fetcher port.FeedFetcherPort
	ingest  usecases_port.IngestDealerListingsPort
}

func NewSyncDealerFeedsUseCase(dealers port.DealerRepositoryPort, fetcher port.FeedFetcherPort, ingest usecases_port.IngestDealerListingsPort) *SyncDealerFeedsUseCase {
	return &SyncDealerFeedsUseCase{dealers: dealers, fetcher: fetcher, ingest: ingest}
}

func (uc *SyncDealerFeedsUseCase) Execute(ctx context.Context) (*domain.FeedSyncReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SyncDealerFeeds"})

	dealers, err := uc.dealers.ListWithFeeds(ctx)
	if err != nil {
		ucLogger.Error("Failed to load dealers with feeds", err, nil)
		return nil, fmt.Errorf("failed to load dealers with feeds: %w", err)
	}

	report := &domain.FeedSyncReport{Dealers: make([]domain.FeedSyncResult, 0, len(dealers))}
	for _, d := range dealers {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		res := domain.FeedSyncResult{DealerID: d.ID}
		created, updated, err := uc.syncOne(ctx, d)
		if err != nil {
			ucLogger.Warn("Feed sync failed", port.Fields{"dealer_id": d.ID.String(), "error": err.Error()})
			res.Error = err.Error()
			report.Failed++
		} else {
			res.Created, res.Updated = created, updated
		}
		report.Dealers = append(report.Dealers, res)
	}

	ucLogger.Info("Feed sync finished", port.Fields{"dealers": len(dealers), "failed": report.Failed})
	return report, nil
}

func (uc *SyncDealerFeedsUseCase) syncOne(ctx context.Context, d domain.Dealer) (int, int, error) {
	if d.FeedURL == nil {
		return 0, 0, nil
	}
	fetched, err := uc.fetcher.Fetch(ctx, *d.FeedURL)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch failed: %w", err)
	}

	contentType := DetectFeedContentType(fetched.ContentType, *d.FeedURL)
	result, err := uc.ingest.IngestFromFeed(ctx, d.ID, contentType, fetched.Body)
	if err != nil {
		return 0, 0, err
	}
	return result.Created, result.Updated, nil
}

// DetectFeedContentType берет тип из заголовка ответа, иначе угадывает по расширению URL
func DetectFeedContentType(header, url string) string {
	if feed.IsJSON(header) || feed.IsCSV(header) {
		return header
	}
	u := url
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.ToLower(path.Ext(u)) {
	case ".json":
		return feed.ContentTypeJSON
	case ".csv":
		return feed.ContentTypeCSV
	}
	return header
}
