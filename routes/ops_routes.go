package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterOpsRoutes sets up the operational persistence routes under /api/ops
func RegisterOpsRoutes(r *mux.Router, persistence *services.PersistenceService, backups *services.BackupService) {
	controller := controllers.NewOpsController(persistence, backups)

	opsRouter := r.PathPrefix("/api/ops").Subrouter()
	opsRouter.HandleFunc("/flush", controller.HandleFlush).Methods("POST")
	opsRouter.HandleFunc("/backups", controller.HandleCreateBackup).Methods("POST")
	opsRouter.HandleFunc("/backups", controller.HandleListBackups).Methods("GET")
	opsRouter.HandleFunc("/backups/restore", controller.HandleRestoreBackup).Methods("POST")
}
