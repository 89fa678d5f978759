package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
)

// допускаются и неполные VIN, сервис расшифровки умеет с ними работать
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9*]{1,17}$`)

type DecodeVINUseCase struct {
	decoder port.VINDecoderPort
}

func NewDecodeVINUseCase(decoder port.VINDecoderPort) *DecodeVINUseCase {
	return &DecodeVINUseCase{decoder: decoder}
}

func (uc *DecodeVINUseCase) Execute(ctx context.Context, vin string) (*domain.VehicleInfo, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if !vinPattern.MatchString(vin) {
		return nil, fmt.Errorf("%w: malformed VIN", domain.ErrInvalidPayload)
	}
	info, err := uc.decoder.Decode(ctx, vin)
	if err != nil {
		return nil, fmt.Errorf("failed to decode VIN: %w", err)
	}
	if info == nil {
		return nil, domain.ErrVehicleNotFound
	}
	return info, nil
}
