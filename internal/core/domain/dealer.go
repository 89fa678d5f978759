package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

type Dealer struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	Website   *string
	FeedURL   *string
	CreatedAt time.Time
}

// NewDealerParams - данные приглашения дилера
type NewDealerParams struct {
	Name    string
	Email   *string
	Phone   *string
	Website *string
	FeedURL *string
}

var folder = cases.Fold()

// FoldKey приводит строку к виду для сравнения без учета регистра
func FoldKey(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// FeedSyncResult - итог синхронизации фида одного дилера
type FeedSyncResult struct {
	DealerID uuid.UUID
	Created  int
	Updated  int
	Error    string
}

type FeedSyncReport struct {
	Dealers []FeedSyncResult
	Failed  int
}
