package postgres_adapter

import "github.com/mmcloughlin/geohash"

// geohashPrecision - длина хранимого geohash, поиск рядом идет по его префиксу
const geohashPrecision = 9

// listingGeohash считает geohash по координатам, nil если одной из координат нет
func listingGeohash(lat, lon *float64) *string {
	if lat == nil || lon == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return nil
	}
	h := geohash.EncodeWithPrecision(*lat, *lon, geohashPrecision)
	return &h
}

// coordinatesForUpdate: координаты меняются только парой, geohash вместе с ними.
// Без одной из координат возвращает nil для всех трех, и строка сохраняет прежние.
func coordinatesForUpdate(lat, lon *float64) (*float64, *float64, *string) {
	if lat == nil || lon == nil {
		return nil, nil, nil
	}
	return lat, lon, listingGeohash(lat, lon)
}

// nearPrefix - префикс geohash для поиска поблизости от точки
func nearPrefix(lat, lon float64, precision int) string {
	if precision > geohashPrecision {
		precision = geohashPrecision
	}
	return geohash.EncodeWithPrecision(lat, lon, uint(precision))
}
