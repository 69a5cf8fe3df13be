package controllers

import (
	"encoding/json"
	"net/http"

	"sonar_server/services"
)

// OpsController exposes the operational persistence surface: immediate
// flush and named backups. None of this touches the matching path.
type OpsController struct {
	Persistence *services.PersistenceService
	Backups     *services.BackupService
}

// NewOpsController initializes the controller
func NewOpsController(persistence *services.PersistenceService, backups *services.BackupService) *OpsController {
	return &OpsController{Persistence: persistence, Backups: backups}
}

// HandleFlush pushes every dirty collection to the durable mirror now
func (c *OpsController) HandleFlush(w http.ResponseWriter, r *http.Request) {
	c.Persistence.Flush(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}

// HandleCreateBackup uploads a named snapshot
func (c *OpsController) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		http.Error(w, `{"error": "a backup name is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Backups.CreateBackup(r.Context(), request.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created", "name": request.Name})
}

// HandleListBackups lists stored snapshots
func (c *OpsController) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := c.Backups.ListBackups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// HandleRestoreBackup replaces the store with a named snapshot
func (c *OpsController) HandleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Name == "" {
		http.Error(w, `{"error": "a backup name is required"}`, http.StatusBadRequest)
		return
	}

	if err := c.Backups.RestoreBackup(r.Context(), request.Name); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored", "name": request.Name})
}
