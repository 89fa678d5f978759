package rest

import (
	"net/http"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"
)

// CronHandler запускает фоновые задачи по внешнему расписанию
type CronHandler struct {
	priceHistoryUC usecases_port.RecordPriceHistoryPort
	alertsUC       usecases_port.SendSavedSearchAlertsPort
	feedSyncUC     usecases_port.SyncDealerFeedsPort
}

func NewCronHandler(
	priceHistoryUC usecases_port.RecordPriceHistoryPort,
	alertsUC usecases_port.SendSavedSearchAlertsPort,
	feedSyncUC usecases_port.SyncDealerFeedsPort,
) *CronHandler {
	return &CronHandler{
		priceHistoryUC: priceHistoryUC,
		alertsUC:       alertsUC,
		feedSyncUC:     feedSyncUC,
	}
}

func (h *CronHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CronPriceHistory"})

	report, err := h.priceHistoryUC.Execute(r.Context())
	if err != nil {
		logger.Error("Price history snapshot failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, SnapshotResponse{
		OK:        true,
		Processed: report.Processed,
		Inserted:  report.Inserted,
		Skipped:   report.Skipped,
		Timestamp: report.Timestamp,
	})
}

func (h *CronHandler) SavedSearchAlerts(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CronSavedSearchAlerts"})

	report, err := h.alertsUC.Execute(r.Context())
	if err != nil {
		logger.Error("Saved search alerts failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := AlertsResponse{
		Processed:  report.Processed,
		EmailsSent: report.EmailsSent,
		Skipped:    report.Skipped,
		Errors:     make([]AlertErrorResponse, len(report.Errors)),
	}
	for i, e := range report.Errors {
		resp.Errors[i] = AlertErrorResponse{SearchID: e.SearchID, Message: e.Message}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *CronHandler) FeedSync(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CronFeedSync"})

	report, err := h.feedSyncUC.Execute(r.Context())
	if err != nil {
		logger.Error("Dealer feed sync failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := FeedSyncResponse{
		OK:      report.Failed == 0,
		Failed:  report.Failed,
		Dealers: make([]FeedSyncDealerResponse, len(report.Dealers)),
	}
	for i, d := range report.Dealers {
		resp.Dealers[i] = FeedSyncDealerResponse{
			DealerID: d.DealerID,
			Created:  d.Created,
			Updated:  d.Updated,
			Error:    d.Error,
		}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
