package constants

// Обменник событий сервиса
const (
	EventsExchange     = "car_finder_events"
	EventsExchangeType = "topic"
)

// Имена очередей
const (
	QueueDealerFeeds      = "dealer_feeds"
	QueueDealerFeedsRetry = "dealer_feeds_retry"
)

// Ключи маршрутизации
const (
	RoutingKeyDealerFeed       = "dealer.feed.ingest"
	RoutingKeyListingsIngested = "listings.ingested"
	RoutingKeyPriceChanged     = "price.changed"
	RoutingKeyAlertEmail       = "notify.email.alert"
)

const (
	RetryExchange      = "dealer_feeds_retry_exchange"
	FinalDLXExchange   = "dealer_feeds_final_dlx"
	FinalDLQ           = "dealer_feeds_final_dlq"
	FinalDLQRoutingKey = "dealer.feeds.dlq"
)

// Заголовок с trace_id, который переносится через брокер
const HeaderTraceID = "x-trace-id"
