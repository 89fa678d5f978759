package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	text := "vin,title,price\r\n" +
		"VIN1, \"Honda, Civic\" ,12000\r\n" +
		"\r\n" +
		"   \n" +
		" , , \n" +
		"VIN2,\"The \"\"Best\"\" Car\"\n" +
		"VIN3,Accord,9000,extra\n"

	records := ParseCSV(text)
	require.Len(t, records, 3)

	assert.Equal(t, map[string]any{"vin": "VIN1", "title": "Honda, Civic", "price": "12000"}, records[0])
	assert.Equal(t, map[string]any{"vin": "VIN2", "title": `The "Best" Car`, "price": ""}, records[1])
	assert.Equal(t, map[string]any{"vin": "VIN3", "title": "Accord", "price": "9000"}, records[2])
}

func TestParseCSVEmpty(t *testing.T) {
	assert.Empty(t, ParseCSV(""))
	assert.Empty(t, ParseCSV("\n\n"))
	assert.Empty(t, ParseCSV("vin,title\n"))
}

func TestParseCSVFeedsNormalizer(t *testing.T) {
	records := ParseCSV("StockNumber,Title,Price,Photos\n77,Ford F-150,\"$31,000\",a.jpg|b.jpg\n")
	require.Len(t, records, 1)

	rec, ok := Normalize(records[0])
	require.True(t, ok)
	assert.Equal(t, "77", rec.SourceID)
	assert.Equal(t, 31000, *rec.Price)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, rec.Images)
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	records := ParseCSV("\ufeffvin,price\r\nVIN123,15000\r\n")
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{"vin": "VIN123", "price": "15000"}, records[0])

	listings := NormalizeAll(records)
	require.Len(t, listings, 1)
	require.NotNil(t, listings[0].VIN)
	assert.Equal(t, "VIN123", *listings[0].VIN)
	assert.Equal(t, 15000, *listings[0].Price)
}
