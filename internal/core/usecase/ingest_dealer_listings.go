package usecase

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/feed"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

const (
	msgNoListings        = "No listings provided."
	msgListingsProcessed = "Listings processed."
)

// IngestDealerListingsUseCase загружает пачку объявлений дилера:
// разбор, нормализация, дедупликация и запись в одной транзакции.
type IngestDealerListingsUseCase struct {
	uow      port.ListingUnitOfWorkPort
	dealers  port.DealerRepositoryPort
	reporter port.IngestionReporterPort
	now      func() time.Time
}

func NewIngestDealerListingsUseCase(uow port.ListingUnitOfWorkPort, dealers port.DealerRepositoryPort, reporter port.IngestionReporterPort) *IngestDealerListingsUseCase {
	return &IngestDealerListingsUseCase{
		uow:      uow,
		dealers:  dealers,
		reporter: reporter,
		now:      time.Now,
	}
}

// IngestAsUser проверяет, что пользователь может управлять дилером, и загружает пачку
func (uc *IngestDealerListingsUseCase) IngestAsUser(ctx context.Context, principal *domain.Principal, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	if !principal.CanManageDealer(dealerID) {
		contextkeys.LoggerFromContext(ctx).Warn("User is not allowed to manage dealer", port.Fields{
			"user_id":   principal.UserID.String(),
			"dealer_id": dealerID.String(),
		})
		return nil, domain.ErrForbidden
	}
	return uc.ingest(ctx, dealerID, contentType, body)
}

// IngestFromFeed загружает пачку без проверки прав: вызывается очередью и синхронизацией фидов
func (uc *IngestDealerListingsUseCase) IngestFromFeed(ctx context.Context, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error) {
	return uc.ingest(ctx, dealerID, contentType, body)
}

func (uc *IngestDealerListingsUseCase) ingest(ctx context.Context, dealerID uuid.UUID, contentType string, body []byte) (*domain.IngestionResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "IngestDealerListings",
		"dealer_id": dealerID.String(),
	})

	dealer, err := uc.dealers.GetByID(ctx, dealerID)
	if err != nil {
		ucLogger.Error("Failed to load dealer", err, nil)
		return nil, fmt.Errorf("failed to load dealer %s: %w", dealerID, err)
	}
	if dealer == nil {
		return nil, domain.ErrDealerNotFound
	}

	raw, err := feed.ParsePayload(contentType, body)
	if err != nil {
		ucLogger.Warn("Rejected payload", port.Fields{"content_type": contentType, "error": err.Error()})
		return nil, err
	}

	result := &domain.IngestionResult{Received: len(raw)}
	if len(raw) == 0 {
		result.Message = msgNoListings
		return result, nil
	}

	valid := feed.NormalizeAll(raw)
	result.Valid = len(valid)
	if len(valid) == 0 {
		ucLogger.Warn("Payload has no valid records", port.Fields{"received": len(raw)})
		return nil, domain.ErrNoValidRecords
	}

	unique := feed.Dedupe(valid)
	result.Unique = len(unique)

	ucLogger.Info("Payload normalized, writing batch", port.Fields{
		"received": result.Received,
		"valid":    result.Valid,
		"unique":   result.Unique,
	})

	source := domain.DealerSource(dealerID)
	now := uc.now().UTC()

	err = uc.uow.WithinTx(ctx, func(tx port.ListingTxPort) error {
		// при повторном вызове fn счетчики должны начинаться с нуля
		created, updated := 0, 0
		for i := range unique {
			rec := &unique[i]
			listing := listingFromRecord(rec, source, dealerID, now)

			existing, err := tx.FindBySourceKey(ctx, source, rec.SourceID)
			if err != nil {
				return fmt.Errorf("lookup of source_id %q failed: %w", rec.SourceID, err)
			}

			if existing == nil {
				listing.ID = uuid.New()
				listing.CreatedAt = now
				if err := tx.InsertListing(ctx, listing); err != nil {
					return fmt.Errorf("insert of source_id %q failed: %w", rec.SourceID, err)
				}
				created++
				continue
			}

			if existing.DealerID != nil && *existing.DealerID != dealerID {
				return fmt.Errorf("%w: source_id %q", domain.ErrOwnershipConflict, rec.SourceID)
			}
			if err := tx.UpdateListing(ctx, existing.ID, listing); err != nil {
				return fmt.Errorf("update of source_id %q failed: %w", rec.SourceID, err)
			}
			updated++
		}
		result.Created, result.Updated = created, updated
		return nil
	})
	if err != nil {
		ucLogger.Error("Batch rolled back", err, nil)
		return nil, err
	}

	result.Message = msgListingsProcessed
	ucLogger.Info("Batch committed", port.Fields{"created": result.Created, "updated": result.Updated})

	report := domain.IngestionReport{
		DealerID: dealerID,
		Created:  result.Created,
		Updated:  result.Updated,
		TraceID:  contextkeys.TraceIDFromContext(ctx),
		At:       now,
	}
	if err := uc.reporter.ReportIngestion(ctx, report); err != nil {
		// данные уже зафиксированы, отчет не критичен
		ucLogger.Error("Failed to publish ingestion report", err, nil)
	}

	return result, nil
}

func listingFromRecord(rec *domain.NormalizedListing, source string, dealerID uuid.UUID, now time.Time) *domain.Listing {
	updatedAt := now
	if rec.UpdatedAt != nil {
		updatedAt = *rec.UpdatedAt
	}
	owner := dealerID
	return &domain.Listing{
		ListingFields: rec.ListingFields,
		Source:        source,
		SourceID:      rec.SourceID,
		HashSignature: rec.HashSignature,
		SellerType:    domain.SellerTypeDealer,
		DealerID:      &owner,
		UpdatedAt:     updatedAt,
	}
}
