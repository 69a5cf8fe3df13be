package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sonar_server/services"
)

// RelationController struct
type RelationController struct {
	RelationService *services.RelationService
}

// NewRelationController initializes the controller
func NewRelationController(service *services.RelationService) *RelationController {
	return &RelationController{RelationService: service}
}

// HandleGetActiveRelations lists the live relations a party holds
func (c *RelationController) HandleGetActiveRelations(w http.ResponseWriter, r *http.Request) {
	partyID := r.URL.Query().Get("partyId")
	if partyID == "" {
		http.Error(w, `{"error": "partyId query parameter is required"}`, http.StatusBadRequest)
		return
	}

	relations, err := c.RelationService.GetActiveRelations(partyID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relations)
}

// HandleGetRelation fetches one relation by id
func (c *RelationController) HandleGetRelation(w http.ResponseWriter, r *http.Request) {
	relationID := mux.Vars(r)["relationId"]

	relation, err := c.RelationService.GetRelation(relationID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relation)
}

// HandleConnectRequest opens a digital connect request between two parties
// sharing an event context
func (c *RelationController) HandleConnectRequest(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FromPartyID string `json:"fromPartyId"`
		ToPartyID   string `json:"toPartyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := c.RelationService.RequestConnect(request.FromPartyID, request.ToPartyID, time.Now()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "requested"})
}

// HandleConnectAccept turns an open request into a short-lived digital relation
func (c *RelationController) HandleConnectAccept(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID     string `json:"partyId"`     // the accepting party
		FromPartyID string `json:"fromPartyId"` // who asked
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	result, err := c.RelationService.AcceptConnect(request.PartyID, request.FromPartyID, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
