package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"sonar_server/services"
)

// EncounterController struct
type EncounterController struct {
	EncounterService *services.EncounterService
}

// NewEncounterController initializes the controller
func NewEncounterController(service *services.EncounterService) *EncounterController {
	return &EncounterController{EncounterService: service}
}

// HandleGetEncounters returns a party's encounter history
func (c *EncounterController) HandleGetEncounters(w http.ResponseWriter, r *http.Request) {
	partyID := r.URL.Query().Get("partyId")
	if partyID == "" {
		http.Error(w, `{"error": "partyId query parameter is required"}`, http.StatusBadRequest)
		return
	}

	encounters, err := c.EncounterService.GetEncounters(partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encounters)
}

// HandleDeleteEncounter removes one history entry by explicit user action
func (c *EncounterController) HandleDeleteEncounter(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID     string `json:"partyId"`
		EncounterID string `json:"encounterId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.EncounterService.DeleteEncounter(request.PartyID, request.EncounterID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleGetScore reports the decayed score alongside the spendable raw balance
func (c *EncounterController) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	partyID := r.URL.Query().Get("partyId")
	if partyID == "" {
		http.Error(w, `{"error": "partyId query parameter is required"}`, http.StatusBadRequest)
		return
	}

	raw, err := c.EncounterService.RawScore(partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"score":    c.EncounterService.Score(partyID, time.Now()),
		"rawScore": raw,
	})
}
