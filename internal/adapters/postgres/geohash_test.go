package postgres_adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func TestCoordinatesForUpdate(t *testing.T) {
	tests := []struct {
		name        string
		lat, lon    *float64
		wantCoords  bool
		wantGeohash bool
	}{
		{"both present", floatPtr(40.7128), floatPtr(-74.006), true, true},
		{"only latitude", floatPtr(40.7128), nil, false, false},
		{"only longitude", nil, floatPtr(-74.006), false, false},
		{"none", nil, nil, false, false},
		{"out of range", floatPtr(95), floatPtr(10), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, geo := coordinatesForUpdate(tt.lat, tt.lon)
			if !tt.wantCoords {
				assert.Nil(t, lat)
				assert.Nil(t, lon)
				assert.Nil(t, geo)
				return
			}
			require.NotNil(t, lat)
			require.NotNil(t, lon)
			assert.Equal(t, *tt.lat, *lat)
			assert.Equal(t, *tt.lon, *lon)
			if tt.wantGeohash {
				require.NotNil(t, geo)
				assert.Len(t, *geo, geohashPrecision)
				assert.Equal(t, "dr5reg", (*geo)[:6])
			} else {
				assert.Nil(t, geo)
			}
		})
	}
}
