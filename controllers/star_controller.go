package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"sonar_server/services"
)

// StarController struct
type StarController struct {
	StarService *services.StarService
}

// NewStarController initializes the controller
func NewStarController(service *services.StarService) *StarController {
	return &StarController{StarService: service}
}

// HandleGetStars lists a party's permanent stars
func (c *StarController) HandleGetStars(w http.ResponseWriter, r *http.Request) {
	partyID := r.URL.Query().Get("partyId")
	if partyID == "" {
		http.Error(w, `{"error": "partyId query parameter is required"}`, http.StatusBadRequest)
		return
	}

	stars, err := c.StarService.GetStars(partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stars)
}

// HandleGetPendingStars lists rewards awaiting a donation choice
func (c *StarController) HandleGetPendingStars(w http.ResponseWriter, r *http.Request) {
	partyID := r.URL.Query().Get("partyId")
	if partyID == "" {
		http.Error(w, `{"error": "partyId query parameter is required"}`, http.StatusBadRequest)
		return
	}

	pending, err := c.StarService.GetPendingStars(partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// HandleDonate attaches a pending star to a chosen recipient
func (c *StarController) HandleDonate(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID       string `json:"partyId"`
		PendingStarID string `json:"pendingStarId"`
		ToPartyID     string `json:"toPartyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	star, err := c.StarService.Donate(request.PartyID, request.PendingStarID, request.ToPartyID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, star)
}

// HandlePurchase buys a star for self or as a gift, spending raw score
func (c *StarController) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID     string `json:"partyId"`
		RecipientID string `json:"recipientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.RecipientID == "" {
		request.RecipientID = request.PartyID
	}

	star, price, err := c.StarService.Purchase(request.PartyID, request.RecipientID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"star": star, "price": price})
}
