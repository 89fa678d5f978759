package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"car-finder/internal/contextkeys"
	"car-finder/internal/contracts"
	"car-finder/internal/core/port"
	"car-finder/internal/core/port/usecases_port"
)

const maxSavedSearchBodyBytes = 64 << 10

type SavedSearchesHandler struct {
	uc usecases_port.SavedSearchesPort
}

func NewSavedSearchesHandler(uc usecases_port.SavedSearchesPort) *SavedSearchesHandler {
	return &SavedSearchesHandler{uc: uc}
}

// List обрабатывает GET /api/v1/saved-searches
func (h *SavedSearchesHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListSavedSearches"})

	searches, err := h.uc.List(r.Context(), contextkeys.PrincipalFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	resp := make([]SavedSearchResponse, len(searches))
	for i := range searches {
		resp[i] = toSavedSearchResponse(&searches[i])
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Create обрабатывает POST /api/v1/saved-searches
func (h *SavedSearchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateSavedSearch"})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSavedSearchBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	// zip проверяется уже без пробелов, пустой считается отсутствующим
	if zip, ok := raw["zip"].(string); ok {
		if trimmed := strings.TrimSpace(zip); trimmed == "" {
			delete(raw, "zip")
		} else {
			raw["zip"] = trimmed
		}
	}

	if err := contracts.ValidateValue(contracts.SavedSearchV1, raw); err != nil {
		logger.Warn("Saved search payload failed validation", port.Fields{"reason": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	var req SavedSearchRequest
	if err := json.Unmarshal(normalized, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	created, err := h.uc.Create(r.Context(), contextkeys.PrincipalFromContext(r.Context()), usecases_port.CreateSavedSearchParams{
		Filters:     req.Filters,
		Zip:         req.Zip,
		RadiusMiles: req.RadiusMiles,
		Notify:      req.Notify,
	})
	if err != nil {
		writeDomainError(w, logger, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, toSavedSearchResponse(created))
}

// Delete обрабатывает DELETE /api/v1/saved-searches/{searchID}
func (h *SavedSearchesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteSavedSearch"})

	id, ok := parseUUIDParam(r, "searchID")
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, "Invalid search id")
		return
	}

	if err := h.uc.Delete(r.Context(), contextkeys.PrincipalFromContext(r.Context()), id); err != nil {
		writeDomainError(w, logger, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
