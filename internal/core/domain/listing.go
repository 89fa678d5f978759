package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SellerTypeDealer  = "dealer"
	SellerTypePrivate = "private"
)

// SourceIDMaxLen - ограничение на длину sourceId
const SourceIDMaxLen = 190

// ListingFields - поля объявления, которые приходят из фида.
// nil означает, что значение в записи отсутствует.
type ListingFields struct {
	VIN          *string
	Title        *string
	Year         *int
	Make         *string
	Model        *string
	Trim         *string
	Price        *int
	Mileage      *int
	Body         *string
	Drivetrain   *string
	Transmission *string
	Fuel         *string
	ColorExt     *string
	ColorInt     *string
	City         *string
	State        *string
	Lat          *float64
	Lon          *float64
	URL          *string
	Phone        *string
	Images       []string
	PostedAt     *time.Time
}

// NormalizedListing - результат нормализации одной сырой записи фида
type NormalizedListing struct {
	ListingFields
	SourceID      string
	HashSignature string
	// время изменения записи по данным фида
	UpdatedAt *time.Time
}

// Listing - каноническая запись объявления
type Listing struct {
	ListingFields
	ID            uuid.UUID
	Source        string
	SourceID      string
	HashSignature string
	Geohash       *string
	SellerType    string
	DealerID      *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DealerSource формирует значение source для объявлений дилера
func DealerSource(dealerID uuid.UUID) string {
	return "dealer:" + dealerID.String()
}

// IngestionResult - итог обработки одной пачки фида
type IngestionResult struct {
	Message  string
	Received int
	Valid    int
	Unique   int
	Created  int
	Updated  int
}

// ListingOwnership - то, что нужно знать о существующей записи при загрузке пачки
type ListingOwnership struct {
	ID       uuid.UUID
	DealerID *uuid.UUID
}

// IngestionReport публикуется после фиксации пачки
type IngestionReport struct {
	DealerID uuid.UUID
	Created  int
	Updated  int
	TraceID  string
	At       time.Time
}
