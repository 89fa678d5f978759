package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)         {}
func (nopLogger) Warn(string, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)        {}
func (nopLogger) Error(string, error, port.Fields) {}
func (l nopLogger) WithFields(port.Fields) port.LoggerPort {
	return l
}

type fakeVerifier struct {
	principal *domain.Principal
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*domain.Principal, error) {
	if token != "good-token" {
		return nil, domain.ErrUnauthorized
	}
	return f.principal, nil
}

type fakeIngest struct {
	gotPrincipal   *domain.Principal
	gotDealer      uuid.UUID
	gotContentType string
	gotBody        []byte
	result         *domain.IngestionResult
	err            error
}

func (f *fakeIngest) IngestAsUser(_ context.Context, p *domain.Principal, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error) {
	f.gotPrincipal, f.gotDealer, f.gotContentType, f.gotBody = p, dealerID, contentType, body
	return f.result, f.err
}

func (f *fakeIngest) IngestFromFeed(context.Context, uuid.UUID, string, []byte) (*domain.IngestionResult, error) {
	return nil, fmt.Errorf("not used")
}

type fakeGetListing struct {
	listing *domain.Listing
}

func (f *fakeGetListing) Execute(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	if f.listing == nil || f.listing.ID != id {
		return nil, domain.ErrListingNotFound
	}
	return f.listing, nil
}

type fakeHistory struct {
	history []domain.PriceSnapshot
}

func (f *fakeHistory) Execute(context.Context, uuid.UUID) ([]domain.PriceSnapshot, error) {
	return f.history, nil
}

type fakeSearch struct {
	got    domain.SearchQuery
	result *domain.SearchResult
}

func (f *fakeSearch) Execute(_ context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	f.got = q
	return f.result, nil
}

type fakeSavedSearches struct {
	gotParams usecases_port.CreateSavedSearchParams
	deleteErr error
}

func (f *fakeSavedSearches) Create(_ context.Context, p *domain.Principal, params usecases_port.CreateSavedSearchParams) (*domain.SavedSearch, error) {
	f.gotParams = params
	return &domain.SavedSearch{ID: uuid.New(), UserID: p.UserID, Filters: params.Filters, Zip: params.Zip, RadiusMiles: 50, Notify: domain.NotifyDaily}, nil
}

func (f *fakeSavedSearches) List(context.Context, *domain.Principal) ([]domain.SavedSearch, error) {
	return nil, nil
}

func (f *fakeSavedSearches) Delete(context.Context, *domain.Principal, uuid.UUID) error {
	return f.deleteErr
}

type fakeDealers struct {
	inviteErr error
}

func (f *fakeDealers) Invite(_ context.Context, _ *domain.Principal, params domain.NewDealerParams) (*domain.Dealer, error) {
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	return &domain.Dealer{ID: uuid.New(), Name: params.Name, Email: params.Email}, nil
}

func (f *fakeDealers) List(context.Context, *domain.Principal) ([]domain.Dealer, error) {
	return []domain.Dealer{{ID: uuid.New(), Name: "Bay Motors"}}, nil
}

type fakeVIN struct{}

func (fakeVIN) Execute(_ context.Context, vin string) (*domain.VehicleInfo, error) {
	if vin != "1HGCM82633A004352" {
		return nil, domain.ErrVehicleNotFound
	}
	return &domain.VehicleInfo{VIN: vin, Make: "HONDA", Model: "Accord", ModelYear: "2003"}, nil
}

type fakeSnapshot struct {
	calls int
}

func (f *fakeSnapshot) Execute(context.Context) (*domain.SnapshotReport, error) {
	f.calls++
	return &domain.SnapshotReport{Processed: 3, Inserted: 2, Skipped: 1, Timestamp: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)}, nil
}

type fakeAlerts struct{}

func (fakeAlerts) Execute(context.Context) (*domain.AlertsReport, error) {
	return &domain.AlertsReport{Processed: 1}, nil
}

type fakeFeedSync struct{}

func (fakeFeedSync) Execute(context.Context) (*domain.FeedSyncReport, error) {
	return &domain.FeedSyncReport{Dealers: []domain.FeedSyncResult{{DealerID: uuid.New(), Error: "boom"}}, Failed: 1}, nil
}

type testEnv struct {
	router    http.Handler
	principal *domain.Principal
	ingest    *fakeIngest
	listing   *domain.Listing
	search    *fakeSearch
	saved     *fakeSavedSearches
	dealers   *fakeDealers
	snapshot  *fakeSnapshot
}

func newTestEnv() *testEnv {
	env := &testEnv{
		principal: &domain.Principal{UserID: uuid.New(), Role: domain.RoleUser},
		ingest:    &fakeIngest{result: &domain.IngestionResult{Message: "Processed 2 listings", Created: 1, Updated: 1}},
		listing:   &domain.Listing{ID: uuid.New(), Source: "dealer", SourceID: "A1", SellerType: "dealer"},
		search:    &fakeSearch{result: &domain.SearchResult{}},
		saved:     &fakeSavedSearches{},
		dealers:   &fakeDealers{},
		snapshot:  &fakeSnapshot{},
	}
	cfg := RouterConfig{
		Listings: NewListingsHandler(env.ingest, &fakeGetListing{listing: env.listing}, &fakeHistory{
			history: []domain.PriceSnapshot{{Price: 21000, CapturedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}},
		}, env.search),
		SavedSearches:      NewSavedSearchesHandler(env.saved),
		Dealers:            NewDealersHandler(env.dealers, fakeVIN{}),
		Cron:               NewCronHandler(env.snapshot, fakeAlerts{}, fakeFeedSync{}),
		Verifier:           &fakeVerifier{principal: env.principal},
		CronSecret:         "s3cret",
		CorsAllowedOrigins: []string{"*"},
	}
	env.router = NewRouter(cfg, nopLogger{})
	return env
}

func (env *testEnv) do(method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

var authHeader = map[string]string{"Authorization": "Bearer good-token"}

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rec := env.do(http.MethodGet, "/api/v1/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestIngestDealerListings(t *testing.T) {
	env := newTestEnv()
	dealerID := uuid.New()
	target := "/api/v1/dealers/" + dealerID.String() + "/listings"
	body := []byte(`[{"vin":"1HGCM82633A004352","price":"$21,000"}]`)

	t.Run("requires token", func(t *testing.T) {
		rec := env.do(http.MethodPost, target, body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = env.do(http.MethodPost, target, body, map[string]string{"Authorization": "Bearer nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid dealer id", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/v1/dealers/not-a-uuid/listings", body, authHeader)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid dealer id")
	})

	t.Run("success", func(t *testing.T) {
		headers := map[string]string{"Authorization": "Bearer good-token", "Content-Type": "application/json"}
		rec := env.do(http.MethodPost, target, body, headers)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp IngestionResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, IngestionResponse{Message: "Processed 2 listings", Created: 1, Updated: 1}, resp)
		assert.Equal(t, env.principal, env.ingest.gotPrincipal)
		assert.Equal(t, dealerID, env.ingest.gotDealer)
		assert.Equal(t, "application/json", env.ingest.gotContentType)
		assert.Equal(t, body, env.ingest.gotBody)
	})

	t.Run("domain errors", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
		}{
			{fmt.Errorf("%w: expected an array", domain.ErrInvalidPayload), http.StatusBadRequest},
			{domain.ErrNoValidRecords, http.StatusBadRequest},
			{domain.ErrUnsupportedContentType, http.StatusBadRequest},
			{domain.ErrForbidden, http.StatusForbidden},
			{domain.ErrDealerNotFound, http.StatusNotFound},
			{fmt.Errorf("%w: A1", domain.ErrOwnershipConflict), http.StatusConflict},
			{fmt.Errorf("db down"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			env.ingest.err = tc.err
			rec := env.do(http.MethodPost, target, body, authHeader)
			assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		}

		env.ingest.err = fmt.Errorf("db down")
		rec := env.do(http.MethodPost, target, body, authHeader)
		assert.NotContains(t, rec.Body.String(), "db down")
		env.ingest.err = nil
	})

	t.Run("body too large", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), maxIngestBodyBytes+1)
		rec := env.do(http.MethodPost, target, big, authHeader)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestGetListingAndHistory(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/v1/listings/"+env.listing.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing ListingResponse
	decodeBody(t, rec, &listing)
	assert.Equal(t, env.listing.ID, listing.ID)
	assert.Equal(t, []string{}, listing.Images)

	rec = env.do(http.MethodGet, "/api/v1/listings/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/listings/xyz", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/listings/"+env.listing.ID.String()+"/price-history", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history PriceHistoryResponse
	decodeBody(t, rec, &history)
	require.Len(t, history.History, 1)
	assert.Equal(t, 21000, history.History[0].Price)
}

func TestSearchParsesQueryAndPaginates(t *testing.T) {
	env := newTestEnv()
	listings := make([]domain.Listing, 20)
	for i := range listings {
		listings[i] = domain.Listing{ID: uuid.New()}
	}
	env.search.result = &domain.SearchResult{Listings: listings, TotalCount: 45}

	rec := env.do(http.MethodGet, "/api/v1/search?make=+Honda+&minYear=2015.2&maxPrice=25000.9&maxMiles=abc&near=40.7128,-74.0060&precision=12&page=2&pageSize=20&sort=bogus", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	q := env.search.got
	require.NotNil(t, q.Filters.Make)
	assert.Equal(t, "Honda", *q.Filters.Make)
	assert.Nil(t, q.Filters.Model)
	assert.Equal(t, 2016, *q.Filters.MinYear)
	assert.Equal(t, 25000, *q.Filters.MaxPrice)
	assert.Nil(t, q.Filters.MaxMiles)
	require.NotNil(t, q.Near)
	assert.Equal(t, 9, q.Near.Precision)
	assert.Equal(t, domain.SortUpdatedAtDesc, q.Sort)

	var resp SearchResponse
	decodeBody(t, rec, &resp)
	assert.Len(t, resp.Data, 20)
	assert.Equal(t, 45, resp.Meta.TotalCount)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.True(t, resp.Meta.HasNextPage)
	require.NotNil(t, resp.Meta.NextCursor)
	assert.Equal(t, SearchCursor{Page: 3, PageSize: 20, Sort: domain.SortUpdatedAtDesc}, *resp.Meta.NextCursor)

	env.search.result = &domain.SearchResult{Listings: listings[:5], TotalCount: 45}
	rec = env.do(http.MethodGet, "/api/v1/search?page=3&pageSize=500&near=200,10", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.search.got.Near)
	assert.Equal(t, domain.MaxPageSize, env.search.got.PageSize)
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Meta.HasNextPage)
	assert.Nil(t, resp.Meta.NextCursor)
}

func TestSavedSearchesHandlers(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/v1/saved-searches", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/saved-searches", nil, authHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = env.do(http.MethodPost, "/api/v1/saved-searches", []byte(`{not json`), authHeader)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid JSON payload")

	rec = env.do(http.MethodPost, "/api/v1/saved-searches", []byte(`{"filters":{"minYear":1800,"maxPrice":1,"maxMiles":1}}`), authHeader)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request")

	valid := `{"filters":{"make":"Honda","minYear":2015,"maxPrice":25000,"maxMiles":120000},"zip":"  94103  ","notify":"weekly"}`
	rec = env.do(http.MethodPost, "/api/v1/saved-searches", []byte(valid), authHeader)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.saved.gotParams.Zip)
	assert.Equal(t, "94103", *env.saved.gotParams.Zip)
	assert.Equal(t, "weekly", *env.saved.gotParams.Notify)
	assert.Equal(t, 2015, *env.saved.gotParams.Filters.MinYear)
	assert.Nil(t, env.saved.gotParams.RadiusMiles)

	rec = env.do(http.MethodDelete, "/api/v1/saved-searches/oops", nil, authHeader)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid search id")

	env.saved.deleteErr = domain.ErrSavedSearchNotFound
	rec = env.do(http.MethodDelete, "/api/v1/saved-searches/"+uuid.NewString(), nil, authHeader)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.saved.deleteErr = nil
	rec = env.do(http.MethodDelete, "/api/v1/saved-searches/"+uuid.NewString(), nil, authHeader)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestDealersAndVIN(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/api/v1/dealers", nil, authHeader)
	require.Equal(t, http.StatusOK, rec.Code)
	var dealers []DealerResponse
	decodeBody(t, rec, &dealers)
	assert.Len(t, dealers, 1)

	rec = env.do(http.MethodPost, "/api/v1/dealers", []byte(`{"name":"Bay Motors","email":"sales@bay.example"}`), authHeader)
	assert.Equal(t, http.StatusCreated, rec.Code)

	env.dealers.inviteErr = domain.ErrDealerExists
	rec = env.do(http.MethodPost, "/api/v1/dealers", []byte(`{"name":"Bay Motors"}`), authHeader)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.dealers.inviteErr = domain.ErrForbidden
	rec = env.do(http.MethodPost, "/api/v1/dealers", []byte(`{"name":"Bay Motors"}`), authHeader)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/vin/1HGCM82633A004352", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info VehicleInfoResponse
	decodeBody(t, rec, &info)
	assert.Equal(t, "HONDA", info.Make)

	rec = env.do(http.MethodGet, "/api/v1/vin/UNKNOWN", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCronEndpoints(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/api/v1/cron/price-history", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(http.MethodPost, "/api/v1/cron/price-history", nil, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, env.snapshot.calls)

	cronAuth := map[string]string{"Authorization": "Bearer s3cret"}
	rec = env.do(http.MethodPost, "/api/v1/cron/price-history", nil, cronAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"processed":3,"inserted":2,"skipped":1,"timestamp":"2026-01-02T03:00:00Z"}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/v1/cron/price-history", nil, cronAuth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.snapshot.calls)

	rec = env.do(http.MethodPost, "/api/v1/cron/saved-searches", nil, cronAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"processed":1,"emailsSent":0,"skipped":0,"errors":[]}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/cron/feed-sync", nil, cronAuth)
	require.Equal(t, http.StatusOK, rec.Code)
	var sync FeedSyncResponse
	decodeBody(t, rec, &sync)
	assert.False(t, sync.OK)
	assert.Equal(t, 1, sync.Failed)
	assert.Equal(t, "boom", sync.Dealers[0].Error)
}

func TestCronSecretMiddlewareDisabled(t *testing.T) {
	called := false
	h := CronSecretMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.True(t, called)
}
