package rest

import (
	"time"

	"car-finder/internal/core/domain"

	"github.com/google/uuid"
)

type IngestionResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// ListingResponse - полная карточка объявления
type ListingResponse struct {
	ID           uuid.UUID  `json:"id"`
	Source       string     `json:"source"`
	SourceID     string     `json:"sourceId"`
	SellerType   string     `json:"sellerType"`
	DealerID     *uuid.UUID `json:"dealerId"`
	VIN          *string    `json:"vin"`
	Title        *string    `json:"title"`
	Year         *int       `json:"year"`
	Make         *string    `json:"make"`
	Model        *string    `json:"model"`
	Trim         *string    `json:"trim"`
	Price        *int       `json:"price"`
	Mileage      *int       `json:"mileage"`
	Body         *string    `json:"body"`
	Drivetrain   *string    `json:"drivetrain"`
	Transmission *string    `json:"transmission"`
	Fuel         *string    `json:"fuel"`
	ColorExt     *string    `json:"colorExt"`
	ColorInt     *string    `json:"colorInt"`
	City         *string    `json:"city"`
	State        *string    `json:"state"`
	Lat          *float64   `json:"lat"`
	Lon          *float64   `json:"lon"`
	URL          *string    `json:"url"`
	Phone        *string    `json:"phone"`
	Images       []string   `json:"images"`
	PostedAt     *time.Time `json:"postedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ListingCardResponse - объявление в выдаче поиска
type ListingCardResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title"`
	Year      *int      `json:"year"`
	Make      *string   `json:"make"`
	Model     *string   `json:"model"`
	Price     *int      `json:"price"`
	Mileage   *int      `json:"mileage"`
	City      *string   `json:"city"`
	State     *string   `json:"state"`
	Images    []string  `json:"images"`
	URL       *string   `json:"url"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SearchCursor struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Sort     string `json:"sort"`
}

type SearchMeta struct {
	TotalCount  int           `json:"totalCount"`
	Page        int           `json:"page"`
	PageSize    int           `json:"pageSize"`
	Sort        string        `json:"sort"`
	HasNextPage bool          `json:"hasNextPage"`
	NextCursor  *SearchCursor `json:"nextCursor"`
}

type SearchResponse struct {
	Data []ListingCardResponse `json:"data"`
	Meta SearchMeta            `json:"meta"`
}

type PricePointResponse struct {
	Price      int       `json:"price"`
	CapturedAt time.Time `json:"capturedAt"`
}

type PriceHistoryResponse struct {
	History []PricePointResponse `json:"history"`
}

// SavedSearchRequest - тело создания сохраненного поиска (после проверки схемой)
type SavedSearchRequest struct {
	Filters     domain.SearchFilters `json:"filters"`
	Zip         *string              `json:"zip"`
	RadiusMiles *int                 `json:"radiusMiles"`
	Notify      *string              `json:"notify"`
}

type SavedSearchResponse struct {
	ID          uuid.UUID            `json:"id"`
	Filters     domain.SearchFilters `json:"filters"`
	Zip         *string              `json:"zip"`
	RadiusMiles int                  `json:"radiusMiles"`
	Notify      string               `json:"notify"`
}

type InviteDealerRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Website *string `json:"website"`
	FeedURL *string `json:"feedUrl"`
}

type DealerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Website   *string   `json:"website"`
	FeedURL   *string   `json:"feedUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type VehicleInfoResponse struct {
	VIN       string `json:"vin"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	ModelYear string `json:"modelYear"`
	Trim      string `json:"trim"`
	BodyClass string `json:"bodyClass"`
	DriveType string `json:"driveType"`
	FuelType  string `json:"fuelType"`
}

type SnapshotResponse struct {
	OK        bool      `json:"ok"`
	Processed int       `json:"processed"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

type AlertErrorResponse struct {
	SearchID uuid.UUID `json:"searchId"`
	Message  string    `json:"message"`
}

type AlertsResponse struct {
	Processed  int                  `json:"processed"`
	EmailsSent int                  `json:"emailsSent"`
	Skipped    int                  `json:"skipped"`
	Errors     []AlertErrorResponse `json:"errors"`
}

type FeedSyncDealerResponse struct {
	DealerID uuid.UUID `json:"dealerId"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Error    string    `json:"error,omitempty"`
}

type FeedSyncResponse struct {
	OK      bool                     `json:"ok"`
	Failed  int                      `json:"failed"`
	Dealers []FeedSyncDealerResponse `json:"dealers"`
}

func toListingResponse(l *domain.Listing) ListingResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingResponse{
		ID:           l.ID,
		Source:       l.Source,
		SourceID:     l.SourceID,
		SellerType:   l.SellerType,
		DealerID:     l.DealerID,
		VIN:          l.VIN,
		Title:        l.Title,
		Year:         l.Year,
		Make:         l.Make,
		Model:        l.Model,
		Trim:         l.Trim,
		Price:        l.Price,
		Mileage:      l.Mileage,
		Body:         l.Body,
		Drivetrain:   l.Drivetrain,
		Transmission: l.Transmission,
		Fuel:         l.Fuel,
		ColorExt:     l.ColorExt,
		ColorInt:     l.ColorInt,
		City:         l.City,
		State:        l.State,
		Lat:          l.Lat,
		Lon:          l.Lon,
		URL:          l.URL,
		Phone:        l.Phone,
		Images:       images,
		PostedAt:     l.PostedAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func toListingCard(l *domain.Listing) ListingCardResponse {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return ListingCardResponse{
		ID:        l.ID,
		Title:     l.Title,
		Year:      l.Year,
		Make:      l.Make,
		Model:     l.Model,
		Price:     l.Price,
		Mileage:   l.Mileage,
		City:      l.City,
		State:     l.State,
		Images:    images,
		URL:       l.URL,
		UpdatedAt: l.UpdatedAt,
	}
}

func toSavedSearchResponse(s *domain.SavedSearch) SavedSearchResponse {
	return SavedSearchResponse{
		ID:          s.ID,
		Filters:     s.Filters,
		Zip:         s.Zip,
		RadiusMiles: s.RadiusMiles,
		Notify:      s.Notify,
	}
}

func toDealerResponse(d *domain.Dealer) DealerResponse {
	return DealerResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Website:   d.Website,
		FeedURL:   d.FeedURL,
		CreatedAt: d.CreatedAt,
	}
}
