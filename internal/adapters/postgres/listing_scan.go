package postgres_adapter

import (
	"car-finder/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const listingColumns = `id, source, source_id, hash_signature, vin, title, year, make, model, trim,
	price, mileage, body, drivetrain, transmission, fuel, color_ext, color_int, city, state,
	lat, lon, geohash, url, phone, images, seller_type, dealer_id, posted_at, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.Source, &l.SourceID, &l.HashSignature, &l.VIN, &l.Title, &l.Year, &l.Make, &l.Model, &l.Trim,
		&l.Price, &l.Mileage, &l.Body, &l.Drivetrain, &l.Transmission, &l.Fuel, &l.ColorExt, &l.ColorInt, &l.City, &l.State,
		&l.Lat, &l.Lon, &l.Geohash, &l.URL, &l.Phone, &l.Images, &l.SellerType, &l.DealerID, &l.PostedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	return &l, nil
}
