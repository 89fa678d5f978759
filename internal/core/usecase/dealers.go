package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

type DealersUseCase struct {
	repo port.DealerRepositoryPort
	now  func() time.Time
}

func NewDealersUseCase(repo port.DealerRepositoryPort) *DealersUseCase {
	return &DealersUseCase{repo: repo, now: time.Now}
}

// Invite создает дилера. Доступно только персоналу.
func (uc *DealersUseCase) Invite(ctx context.Context, principal *domain.Principal, params domain.NewDealerParams) (*domain.Dealer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "InviteDealer"})

	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	if !principal.IsStaff() {
		return nil, fmt.Errorf("%w: you do not have permission to invite dealers", domain.ErrForbidden)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: dealer name is required", domain.ErrInvalidPayload)
	}
	email := trimmedOrNil(params.Email)

	existing, err := uc.repo.FindByNameOrEmail(ctx, name, email)
	if err != nil {
		ucLogger.Error("Failed to check dealer uniqueness", err, nil)
		return nil, fmt.Errorf("failed to check dealer uniqueness: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDealerExists
	}

	dealer := &domain.Dealer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     trimmedOrNil(params.Phone),
		Website:   trimmedOrNil(params.Website),
		FeedURL:   trimmedOrNil(params.FeedURL),
		CreatedAt: uc.now().UTC(),
	}
	// уникальный индекс в БД ловит гонку между проверкой и вставкой
	if err := uc.repo.Create(ctx, dealer); err != nil {
		if errors.Is(err, domain.ErrDealerExists) {
			return nil, err
		}
		ucLogger.Error("Failed to create dealer", err, nil)
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}

	ucLogger.Info("Dealer invited", port.Fields{"dealer_id": dealer.ID.String(), "invited_by": principal.UserID.String()})
	return dealer, nil
}

// List: персонал видит всех дилеров, остальные только своих
func (uc *DealersUseCase) List(ctx context.Context, principal *domain.Principal) ([]domain.Dealer, error) {
	if principal == nil {
		return nil, domain.ErrUnauthorized
	}
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	if principal.IsStaff() {
		return all, nil
	}
	own := make([]domain.Dealer, 0, len(principal.DealerIDs))
	for _, d := range all {
		if principal.CanManageDealer(d.ID) {
			own = append(own, d)
		}
	}
	return own, nil
}
