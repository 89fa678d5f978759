package nhtsa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	var gotPath, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Count":1,"Results":[{"VIN":"1HGCM82633A004352","Make":"HONDA","Model":"Accord","ModelYear":"2003","Trim":"EX-V6","BodyClass":"Coupe","DriveType":"FWD","FuelTypePrimary":"Gasoline"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 100)
	info, err := c.Decode(context.Background(), "1HGCM82633A004352")
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, "/decodevinvaluesextended/1HGCM82633A004352", gotPath)
	assert.Equal(t, "json", gotFormat)
	assert.Equal(t, "HONDA", info.Make)
	assert.Equal(t, "Accord", info.Model)
	assert.Equal(t, "2003", info.ModelYear)
	assert.Equal(t, "Gasoline", info.FuelType)
}

func TestDecode_Unknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Count":1,"Results":[{"VIN":"XXX","Make":"","Model":"","ModelYear":""}]}`))
	}))
	defer srv.Close()

	info, err := NewClient(srv.URL, 100).Decode(context.Background(), "XXX")
	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestDecode_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 100).Decode(context.Background(), "1HGCM82633A004352")
	assert.ErrorContains(t, err, "502")
}
