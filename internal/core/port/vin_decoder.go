package port

import (
	"context"

	"car-finder/internal/core/domain"
)

type VINDecoderPort interface {
	// Decode возвращает (nil, nil), если сервис ничего не знает о VIN
	Decode(ctx context.Context, vin string) (*domain.VehicleInfo, error)
}
