package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sonar_server/services"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError maps the core's typed failures onto HTTP statuses:
// unknown references are 404, policy violations are 409 with the specific
// reason, anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnknownParty),
		errors.Is(err, services.ErrUnknownRelation),
		errors.Is(err, services.ErrUnknownEvent),
		errors.Is(err, services.ErrUnknownEncounter),
		errors.Is(err, services.ErrUnknownStar),
		errors.Is(err, services.ErrUnknownBackup):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrSelfPairing),
		errors.Is(err, services.ErrSelfDonation),
		errors.Is(err, services.ErrDonationCapReached),
		errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrNicknameTaken),
		errors.Is(err, services.ErrIdentityTaken),
		errors.Is(err, services.ErrNotPairable),
		errors.Is(err, services.ErrNoSharedEvent),
		errors.Is(err, services.ErrNoConnectRequest),
		errors.Is(err, services.ErrNotEventCreator):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
