package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"sonar_server/services"
)

// SonicController exposes the announce/report/stop flow over REST for
// clients without a live socket. The socket server offers the same events.
type SonicController struct {
	SonicService *services.SonicService
}

// NewSonicController initializes the controller
func NewSonicController(service *services.SonicService) *SonicController {
	return &SonicController{SonicService: service}
}

// HandleAnnounce places a session in the sonic queue
func (c *SonicController) HandleAnnounce(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID string `json:"partyId"`
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	assignment, err := c.SonicService.Announce(request.PartyID, request.EventID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

// HandleReport resolves a detected slot
func (c *SonicController) HandleReport(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID      string `json:"partyId"`
		DetectedSlot int    `json:"detectedSlot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	outcome, err := c.SonicService.Report(request.PartyID, request.DetectedSlot, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// HandleStop removes a session from the queue
func (c *SonicController) HandleStop(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ID string `json:"id"` // party id, or event id for an operator
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	c.SonicService.StopPresence(request.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}
