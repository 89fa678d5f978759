package domain

import (
	"time"

	"github.com/google/uuid"
)

// PriceSnapshot - запись истории цен. Только добавляется, не изменяется.
type PriceSnapshot struct {
	ID         uuid.UUID
	ListingID  uuid.UUID
	Price      int
	CapturedAt time.Time
}

// ListingPriceState - данные объявления, нужные для снимка цены
type ListingPriceState struct {
	ID          uuid.UUID
	VIN         *string
	Title       *string
	Phone       *string
	Price       *int
	LatestPrice *int // цена последнего снимка, nil если снимков нет
}

// SnapshotReport - итог прогона задачи снимков цен
type SnapshotReport struct {
	Processed int
	Inserted  int
	Skipped   int
	Timestamp time.Time
}

// PriceChangedEvent публикуется на каждый новый снимок
type PriceChangedEvent struct {
	ListingID     uuid.UUID
	PreviousPrice *int
	Price         int
	CapturedAt    time.Time
}
