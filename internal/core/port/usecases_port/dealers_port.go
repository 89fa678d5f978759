package usecases_port

import (
	"context"

	"car-finder/internal/core/domain"
)

type DealersPort interface {
	Invite(ctx context.Context, principal *domain.Principal, params domain.NewDealerParams) (*domain.Dealer, error)
	List(ctx context.Context, principal *domain.Principal) ([]domain.Dealer, error)
}

type SyncDealerFeedsPort interface {
	Execute(ctx context.Context) (*domain.FeedSyncReport, error)
}

type DecodeVINPort interface {
	Execute(ctx context.Context, vin string) (*domain.VehicleInfo, error)
}
