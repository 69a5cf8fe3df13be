package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"sonar_server/services"
)

// PartyController struct
type PartyController struct {
	PartyService *services.PartyService
}

// NewPartyController initializes the controller
func NewPartyController(service *services.PartyService) *PartyController {
	return &PartyController{PartyService: service}
}

// HandleCreateParty registers a new person profile
func (c *PartyController) HandleCreateParty(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Identity    string `json:"identity"`
		Nickname    string `json:"nickname"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.Identity == "" || request.Nickname == "" {
		http.Error(w, `{"error": "identity and nickname are required"}`, http.StatusBadRequest)
		return
	}

	party, err := c.PartyService.CreateParty(request.Identity, request.Nickname, request.DisplayName, request.PhotoURL, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, party)
}

// HandleGetParty fetches a party by id
func (c *PartyController) HandleGetParty(w http.ResponseWriter, r *http.Request) {
	partyID := mux.Vars(r)["partyId"]

	party, err := c.PartyService.GetParty(partyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, party)
}

// HandleGetPartyByIdentity resolves an external identity to a profile
func (c *PartyController) HandleGetPartyByIdentity(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Identity string `json:"identity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	party, err := c.PartyService.GetPartyByIdentity(request.Identity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, party)
}

// HandleCheckNickname answers the nickname-availability check
func (c *PartyController) HandleCheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := r.URL.Query().Get("nickname")
	if nickname == "" {
		http.Error(w, `{"error": "nickname query parameter is required"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": c.PartyService.IsNicknameAvailable(nickname)})
}

// HandleRename changes a party's nickname
func (c *PartyController) HandleRename(w http.ResponseWriter, r *http.Request) {
	var request struct {
		PartyID  string `json:"partyId"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	party, err := c.PartyService.Rename(request.PartyID, request.Nickname)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, party)
}

// HandleCreateEvent registers an event and its synthetic party
func (c *PartyController) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CreatorID string `json:"creatorId"`
		Name      string `json:"name"`
		Venue     string `json:"venue"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🎪 Creating event %q for %s", request.Name, request.CreatorID)
	event, err := c.PartyService.CreateEvent(request.CreatorID, request.Name, request.Venue, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// HandleGetEvents lists a creator's events
func (c *PartyController) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	creatorID := r.URL.Query().Get("creatorId")
	if creatorID == "" {
		http.Error(w, `{"error": "creatorId query parameter is required"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, c.PartyService.GetEventsByCreator(creatorID))
}

// HandleCreateServiceProvider registers a synthetic service-provider party
func (c *PartyController) HandleCreateServiceProvider(w http.ResponseWriter, r *http.Request) {
	var request struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	party, err := c.PartyService.CreateServiceProvider(request.DisplayName, time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, party)
}
