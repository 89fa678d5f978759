package feedfetcher

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/port"

	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 20 << 20
)

// FeedFetcherAdapter скачивает фиды дилеров по feedUrl.
type FeedFetcherAdapter struct {
	// родительский коллектор, от него клонируются коллекторы запросов
	collector   *colly.Collector
	timeout     time.Duration
	maxBodySize int
}

func NewFeedFetcherAdapter(timeout time.Duration) (*FeedFetcherAdapter, error) {
	return newFeedFetcherAdapter(timeout, defaultMaxBodySize)
}

func newFeedFetcherAdapter(timeout time.Duration, maxBodySize int) (*FeedFetcherAdapter, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodySize),
		colly.UserAgent("car-finder-feed-sync/1.0"),
	)

	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
	})
	if err != nil {
		return nil, fmt.Errorf("FeedFetcherAdapter: failed to set limit rule: %w", err)
	}

	return &FeedFetcherAdapter{collector: c, timeout: timeout, maxBodySize: maxBodySize}, nil
}

func (a *FeedFetcherAdapter) Fetch(ctx context.Context, url string) (*port.FetchedFeed, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{
		"component": "FeedFetcherAdapter",
		"url":       url,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := a.collector.Clone()
	collector.SetRequestTimeout(a.timeout)
	collector.Context = ctx

	var feed *port.FetchedFeed
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		fetchLogger.Debug("Fetching dealer feed", nil)
	})

	collector.OnResponse(func(r *colly.Response) {
		// colly молча обрезает тело по MaxBodySize, обрезанный фид не загружаем
		if len(r.Body) >= a.maxBodySize {
			fetchErr = fmt.Errorf("feed body exceeds %d bytes", a.maxBodySize)
			return
		}
		contentType := ""
		if r.Headers != nil {
			contentType = r.Headers.Get("Content-Type")
		}
		feed = &port.FetchedFeed{ContentType: contentType, Body: r.Body}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Failed to fetch dealer feed", err, port.Fields{"status": r.StatusCode})
		fetchErr = fmt.Errorf("feed fetch failed with status %d: %w", r.StatusCode, err)
	})

	if err := collector.Visit(url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("failed to visit feed url: %w", err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fetchErr != nil {
		return nil, fetchErr
	}
	if feed == nil {
		return nil, fmt.Errorf("feed fetch returned no response")
	}

	fetchLogger.Info("Dealer feed fetched", port.Fields{"bytes": len(feed.Body), "content_type": feed.ContentType})
	return feed, nil
}
