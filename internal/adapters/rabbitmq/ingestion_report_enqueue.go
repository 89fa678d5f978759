package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

// IngestionReportDTO - сообщение о зафиксированной пачке объявлений
type IngestionReportDTO struct {
	DealerID uuid.UUID `json:"dealerId"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	TraceID  string    `json:"traceId,omitempty"`
	At       time.Time `json:"at"`
}

type IngestionReporterAdapter struct {
	producer   jsonPublisher
	routingKey string
}

func NewIngestionReporterAdapter(producer jsonPublisher, routingKey string) (*IngestionReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &IngestionReporterAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *IngestionReporterAdapter) ReportIngestion(ctx context.Context, report domain.IngestionReport) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "IngestionReporterAdapter",
		"routing_key": a.routingKey,
		"dealer_id":   report.DealerID.String(),
	})

	dto := IngestionReportDTO{
		DealerID: report.DealerID,
		Created:  report.Created,
		Updated:  report.Updated,
		TraceID:  report.TraceID,
		At:       report.At,
	}

	if err := publishWithTrace(ctx, a.producer, a.routingKey, "ListingsIngestedEvent", dto); err != nil {
		adapterLogger.Error("Failed to publish ingestion report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish ingestion report for dealer %s: %w", report.DealerID, err)
	}

	adapterLogger.Debug("Ingestion report published", port.Fields{"created": dto.Created, "updated": dto.Updated})
	return nil
}
