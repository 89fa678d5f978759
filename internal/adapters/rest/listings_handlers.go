package rest

import (
	"errors"
	"io"
	"net/http"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"
)

const maxIngestBodyBytes = 10 << 20

type ListingsHandler struct {
	ingestUC  usecases_port.IngestDealerListingsPort
	getUC     usecases_port.GetListingPort
	historyUC usecases_port.GetPriceHistoryPort
	searchUC  usecases_port.SearchListingsPort
}

func NewListingsHandler(
	ingestUC usecases_port.IngestDealerListingsPort,
	getUC usecases_port.GetListingPort,
	historyUC usecases_port.GetPriceHistoryPort,
	searchUC usecases_port.SearchListingsPort,
) *ListingsHandler {
	return &ListingsHandler{
		ingestUC:  ingestUC,
		getUC:     getUC,
		historyUC: historyUC,
		searchUC:  searchUC,
	}
}

// IngestDealerListings обрабатывает POST /api/v1/dealers/{dealerID}/listings
func (h *ListingsHandler) IngestDealerListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "IngestDealerListings"})

	dealerID, ok := parseUUIDParam(r, "dealerID")
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid dealer id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSONError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"dealer_id":    dealerID.String(),
		"content_type": r.Header.Get("Content-Type"),
		"body_bytes":   len(body),
	})
	handlerLogger.Info("Processing dealer listings upload", nil)

	principal := contextkeys.PrincipalFromContext(r.Context())
	result, err := h.ingestUC.IngestAsUser(r.Context(), principal, dealerID, r.Header.Get("Content-Type"), body)
	if err != nil {
		handlerLogger.Warn("Dealer listings upload rejected", port.Fields{"reason": err.Error()})
		writeDomainError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, IngestionResponse{
		Message: result.Message,
		Created: result.Created,
		Updated: result.Updated,
	})
}

// GetListing обрабатывает GET /api/v1/listings/{listingID}
func (h *ListingsHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListing"})

	id, ok := parseUUIDParam(r, "listingID")
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing id")
		return
	}

	listing, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingResponse(listing))
}

// GetPriceHistory обрабатывает GET /api/v1/listings/{listingID}/price-history
func (h *ListingsHandler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPriceHistory"})

	id, ok := parseUUIDParam(r, "listingID")
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid listing id")
		return
	}

	history, err := h.historyUC.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	resp := PriceHistoryResponse{History: make([]PricePointResponse, len(history))}
	for i, s := range history {
		resp.History[i] = PricePointResponse{Price: s.Price, CapturedAt: s.CapturedAt}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Search обрабатывает GET /api/v1/search
func (h *ListingsHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Search"})

	query := parseSearchQuery(r).Normalized()

	result, err := h.searchUC.Execute(r.Context(), query)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	resp := SearchResponse{
		Data: make([]ListingCardResponse, len(result.Listings)),
		Meta: SearchMeta{
			TotalCount: result.TotalCount,
			Page:       query.Page,
			PageSize:   query.PageSize,
			Sort:       query.Sort,
		},
	}
	for i := range result.Listings {
		resp.Data[i] = toListingCard(&result.Listings[i])
	}

	resp.Meta.HasNextPage = query.Offset()+len(result.Listings) < result.TotalCount
	if resp.Meta.HasNextPage {
		resp.Meta.NextCursor = &SearchCursor{
			Page:     query.Page + 1,
			PageSize: query.PageSize,
			Sort:     query.Sort,
		}
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

func parseSearchQuery(r *http.Request) domain.SearchQuery {
	q := r.URL.Query()
	return domain.SearchQuery{
		Filters: domain.SearchFilters{
			Make:     optionalQueryString(r, "make"),
			Model:    optionalQueryString(r, "model"),
			MinYear:  parseLowerBound(q.Get("minYear")),
			MaxPrice: parseUpperBound(q.Get("maxPrice")),
			MaxMiles: parseUpperBound(q.Get("maxMiles")),
		},
		Near:     parseNear(q.Get("near"), q.Get("precision")),
		Page:     parsePositiveInt(q.Get("page"), 1, 1, domain.MaxPage),
		PageSize: parsePositiveInt(q.Get("pageSize"), domain.DefaultPageSize, 1, domain.MaxPageSize),
		Sort:     q.Get("sort"),
	}
}
