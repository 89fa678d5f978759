package usecase

import (
	"context"
	"fmt"
	"strings"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
)

type SearchListingsUseCase struct {
	listings port.ListingReaderPort
}

func NewSearchListingsUseCase(listings port.ListingReaderPort) *SearchListingsUseCase {
	return &SearchListingsUseCase{listings: listings}
}

func (uc *SearchListingsUseCase) Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	query = query.Normalized()

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "SearchListings",
		"page":      query.Page,
		"page_size": query.PageSize,
		"sort":      query.Sort,
	})

	result, err := uc.listings.Search(ctx, query)
	if err != nil {
		ucLogger.Error("Search failed", err, nil)
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	ucLogger.Debug("Search finished", port.Fields{"total": result.TotalCount})
	return result, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
