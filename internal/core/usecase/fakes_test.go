package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

// fakeListingStore - хранилище объявлений в памяти.
// WithinTx работает с копией и подменяет данные только при успехе fn.
type fakeListingStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]domain.Listing
	history  map[uuid.UUID][]domain.PriceSnapshot
	failOn   string // sourceId, на котором вставка/обновление падает
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{
		listings: map[uuid.UUID]domain.Listing{},
		history:  map[uuid.UUID][]domain.PriceSnapshot{},
	}
}

func (s *fakeListingStore) WithinTx(ctx context.Context, fn func(tx port.ListingTxPort) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[uuid.UUID]domain.Listing, len(s.listings))
	for k, v := range s.listings {
		work[k] = v
	}
	tx := &fakeTx{rows: work, failOn: s.failOn}
	if err := fn(tx); err != nil {
		return err
	}
	s.listings = work
	return nil
}

func (s *fakeListingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}

func (s *fakeListingStore) bySourceID(sourceID string) (domain.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.listings {
		if l.SourceID == sourceID {
			return l, true
		}
	}
	return domain.Listing{}, false
}

func (s *fakeListingStore) put(l domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

func (s *fakeListingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *fakeListingStore) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.Listing
	for _, l := range s.listings {
		if q.Filters.Make != nil && (l.Make == nil || !strings.Contains(strings.ToLower(*l.Make), strings.ToLower(*q.Filters.Make))) {
			continue
		}
		if q.Filters.MaxPrice != nil && (l.Price == nil || *l.Price > *q.Filters.MaxPrice) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UpdatedAt.After(matched[j].UpdatedAt) })

	total := len(matched)
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return &domain.SearchResult{Listings: matched[start:end], TotalCount: total}, nil
}

func (s *fakeListingStore) ListListingsForSnapshot(ctx context.Context) ([]domain.ListingPriceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ListingPriceState, 0, len(s.listings))
	for _, l := range s.listings {
		st := domain.ListingPriceState{ID: l.ID, VIN: l.VIN, Title: l.Title, Phone: l.Phone, Price: l.Price}
		if h := s.history[l.ID]; len(h) > 0 {
			p := h[len(h)-1].Price
			st.LatestPrice = &p
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *fakeListingStore) InsertSnapshot(ctx context.Context, listingID uuid.UUID, price int, capturedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[listingID] = append(s.history[listingID], domain.PriceSnapshot{ID: uuid.New(), ListingID: listingID, Price: price, CapturedAt: capturedAt})
	return nil
}

func (s *fakeListingStore) GetHistory(ctx context.Context, listingID uuid.UUID) ([]domain.PriceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PriceSnapshot(nil), s.history[listingID]...), nil
}

type fakeTx struct {
	rows   map[uuid.UUID]domain.Listing
	failOn string
}

func (t *fakeTx) FindBySourceKey(ctx context.Context, source, sourceID string) (*domain.ListingOwnership, error) {
	for _, l := range t.rows {
		if l.Source == source && l.SourceID == sourceID {
			return &domain.ListingOwnership{ID: l.ID, DealerID: l.DealerID}, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) UpdateListing(ctx context.Context, id uuid.UUID, in *domain.Listing) error {
	if in.SourceID == t.failOn {
		return errors.New("boom")
	}
	cur := t.rows[id]
	images := cur.Images
	if len(in.Images) > 0 {
		images = in.Images
	}
	createdAt := cur.CreatedAt
	cur.ListingFields = mergeFields(cur.ListingFields, in.ListingFields)
	cur.Images = images
	cur.HashSignature = in.HashSignature
	cur.DealerID = in.DealerID
	cur.SellerType = in.SellerType
	cur.UpdatedAt = in.UpdatedAt
	cur.CreatedAt = createdAt
	t.rows[id] = cur
	return nil
}

func (t *fakeTx) InsertListing(ctx context.Context, l *domain.Listing) error {
	if l.SourceID == t.failOn {
		return errors.New("boom")
	}
	t.rows[l.ID] = *l
	return nil
}

// mergeFields повторяет COALESCE из SQL-адаптера для полей, которые проверяют тесты
func mergeFields(cur, in domain.ListingFields) domain.ListingFields {
	pick := func(a, b *string) *string {
		if b != nil {
			return b
		}
		return a
	}
	pickInt := func(a, b *int) *int {
		if b != nil {
			return b
		}
		return a
	}
	out := cur
	out.VIN = pick(cur.VIN, in.VIN)
	out.Title = pick(cur.Title, in.Title)
	out.Make = pick(cur.Make, in.Make)
	out.Model = pick(cur.Model, in.Model)
	out.Phone = pick(cur.Phone, in.Phone)
	out.Price = pickInt(cur.Price, in.Price)
	out.Mileage = pickInt(cur.Mileage, in.Mileage)
	out.Year = pickInt(cur.Year, in.Year)
	return out
}

type fakeDealers struct {
	mu      sync.Mutex
	dealers map[uuid.UUID]domain.Dealer
}

func newFakeDealers(ds ...domain.Dealer) *fakeDealers {
	f := &fakeDealers{dealers: map[uuid.UUID]domain.Dealer{}}
	for _, d := range ds {
		f.dealers[d.ID] = d
	}
	return f
}

func (f *fakeDealers) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dealers[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDealers) FindByNameOrEmail(ctx context.Context, name string, email *string) (*domain.Dealer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.dealers {
		if domain.FoldKey(d.Name) == domain.FoldKey(name) {
			return &d, nil
		}
		if email != nil && d.Email != nil && domain.FoldKey(*d.Email) == domain.FoldKey(*email) {
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeDealers) Create(ctx context.Context, d *domain.Dealer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dealers[d.ID] = *d
	return nil
}

func (f *fakeDealers) List(ctx context.Context) ([]domain.Dealer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Dealer, 0, len(f.dealers))
	for _, d := range f.dealers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDealers) ListWithFeeds(ctx context.Context) ([]domain.Dealer, error) {
	all, _ := f.List(ctx)
	var out []domain.Dealer
	for _, d := range all {
		if d.FeedURL != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []domain.IngestionReport
	events  []domain.PriceChangedEvent
	alerts  []domain.AlertEmail
	err     error
}

func (r *fakeReporter) ReportIngestion(ctx context.Context, rep domain.IngestionReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
	return r.err
}

func (r *fakeReporter) PublishPriceChanged(ctx context.Context, e domain.PriceChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *fakeReporter) SendAlert(ctx context.Context, e domain.AlertEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, e)
	return nil
}

type fakeSavedSearches struct {
	mu       sync.Mutex
	searches map[uuid.UUID]domain.SavedSearch
}

func newFakeSavedSearches(ss ...domain.SavedSearch) *fakeSavedSearches {
	f := &fakeSavedSearches{searches: map[uuid.UUID]domain.SavedSearch{}}
	for _, s := range ss {
		f.searches[s.ID] = s
	}
	return f
}

func (f *fakeSavedSearches) Create(ctx context.Context, s *domain.SavedSearch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[s.ID] = *s
	return nil
}

func (f *fakeSavedSearches) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SavedSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SavedSearch
	for _, s := range f.searches {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeSavedSearches) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.searches[id]
	if !ok || s.UserID != userID {
		return false, nil
	}
	delete(f.searches, id)
	return true, nil
}

func (f *fakeSavedSearches) ListNotifiable(ctx context.Context) ([]domain.SavedSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SavedSearch
	for _, s := range f.searches {
		if s.Notify != domain.NotifyOff {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSavedSearches) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.searches[id]
	s.LastNotifiedAt = &at
	f.searches[id] = s
	return nil
}

type fakeFetcher struct {
	feeds map[string]*port.FetchedFeed
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*port.FetchedFeed, error) {
	feed, ok := f.feeds[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return feed, nil
}

type fakeDecoder struct {
	info *domain.VehicleInfo
	err  error
	got  string
}

func (f *fakeDecoder) Decode(ctx context.Context, vin string) (*domain.VehicleInfo, error) {
	f.got = vin
	return f.info, f.err
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
