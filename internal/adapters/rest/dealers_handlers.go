package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/domain"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type DealersHandler struct {
	dealersUC usecases_port.DealersPort
	vinUC     usecases_port.DecodeVINPort
}

func NewDealersHandler(dealersUC usecases_port.DealersPort, vinUC usecases_port.DecodeVINPort) *DealersHandler {
	return &DealersHandler{dealersUC: dealersUC, vinUC: vinUC}
}

// List обрабатывает GET /api/v1/dealers
func (h *DealersHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListDealers"})

	dealers, err := h.dealersUC.List(r.Context(), contextkeys.PrincipalFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	resp := make([]DealerResponse, len(dealers))
	for i := range dealers {
		resp[i] = toDealerResponse(&dealers[i])
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Invite обрабатывает POST /api/v1/dealers
func (h *DealersHandler) Invite(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "InviteDealer"})

	var req InviteDealerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	dealer, err := h.dealersUC.Invite(r.Context(), contextkeys.PrincipalFromContext(r.Context()), domain.NewDealerParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Website: req.Website,
		FeedURL: req.FeedURL,
	})
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	logger.Info("Dealer invited", port.Fields{"dealer_id": dealer.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toDealerResponse(dealer))
}

// DecodeVIN обрабатывает GET /api/v1/vin/{vin}
func (h *DealersHandler) DecodeVIN(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DecodeVIN"})

	vin := strings.TrimSpace(chi.URLParam(r, "vin"))
	if vin == "" {
		WriteJSONError(w, http.StatusBadRequest, "VIN is required")
		return
	}

	info, err := h.vinUC.Execute(r.Context(), vin)
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, VehicleInfoResponse{
		VIN:       info.VIN,
		Make:      info.Make,
		Model:     info.Model,
		ModelYear: info.ModelYear,
		Trim:      info.Trim,
		BodyClass: info.BodyClass,
		DriveType: info.DriveType,
		FuelType:  info.FuelType,
	})
}
