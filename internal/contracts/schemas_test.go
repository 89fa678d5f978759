package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyFromPath(t *testing.T) {
	assert.Equal(t, DealerFeedV1, generateKeyFromPath("contracts/dealer-feed/v1.json"))
	assert.Equal(t, SavedSearchV1, generateKeyFromPath("contracts/saved-search/v1.json"))
	assert.Equal(t, "", generateKeyFromPath("contracts/broken.json"))
}

func TestSchemasRegistered(t *testing.T) {
	assert.Contains(t, compiledSchemas, DealerFeedV1)
	assert.Contains(t, compiledSchemas, SavedSearchV1)
}

func TestValidate_DealerFeed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"csv payload", `{"dealerId":"0b0e4c36-9a2e-4b55-9f62-3b2a5d0e8f11","contentType":"text/csv","payload":"sourceId,price\n1,100"}`, false},
		{"json array payload", `{"dealerId":"0b0e4c36-9a2e-4b55-9f62-3b2a5d0e8f11","contentType":"application/json","payload":[{"sourceId":"1"}]}`, false},
		{"bad uuid", `{"dealerId":"nope","contentType":"text/csv","payload":""}`, true},
		{"missing payload", `{"dealerId":"0b0e4c36-9a2e-4b55-9f62-3b2a5d0e8f11","contentType":"text/csv"}`, true},
		{"not json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(DealerFeedV1, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_SavedSearch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"minimal", `{"filters":{"minYear":2015,"maxPrice":25000,"maxMiles":120000}}`, false},
		{"full", `{"filters":{"make":"Honda","model":"Civic","minYear":2015,"maxPrice":25000,"maxMiles":120000},"zip":"10001","radiusMiles":25,"notify":"weekly"}`, false},
		{"year too old", `{"filters":{"minYear":1800,"maxPrice":1,"maxMiles":1}}`, true},
		{"negative price", `{"filters":{"minYear":2015,"maxPrice":-1,"maxMiles":1}}`, true},
		{"bad notify", `{"filters":{"minYear":2015,"maxPrice":1,"maxMiles":1},"notify":"hourly"}`, true},
		{"radius out of range", `{"filters":{"minYear":2015,"maxPrice":1,"maxMiles":1},"radiusMiles":5000}`, true},
		{"unknown filter", `{"filters":{"minYear":2015,"maxPrice":1,"maxMiles":1,"color":"red"}}`, true},
		{"no filters", `{}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(SavedSearchV1, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	assert.ErrorContains(t, Validate("Nope/1.0.0", []byte(`{}`)), "not found")
}
