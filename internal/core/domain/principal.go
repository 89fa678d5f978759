package domain

import "github.com/google/uuid"

const (
	RoleStaff  = "staff"
	RoleDealer = "dealer"
	RoleUser   = "user"
)

// Principal - аутентифицированный пользователь, извлеченный из токена
type Principal struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	DealerIDs []uuid.UUID // дилеры, в которых состоит пользователь
}

func (p *Principal) IsStaff() bool {
	return p != nil && p.Role == RoleStaff
}

// CanManageDealer - персонал управляет любым дилером, остальные только своими
func (p *Principal) CanManageDealer(dealerID uuid.UUID) bool {
	if p == nil {
		return false
	}
	if p.IsStaff() {
		return true
	}
	for _, id := range p.DealerIDs {
		if id == dealerID {
			return true
		}
	}
	return false
}
