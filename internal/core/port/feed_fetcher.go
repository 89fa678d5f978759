package port

import "context"

// FetchedFeed - скачанный фид дилера
type FetchedFeed struct {
	ContentType string
	Body        []byte
}

type FeedFetcherPort interface {
	Fetch(ctx context.Context, url string) (*FetchedFeed, error)
}
