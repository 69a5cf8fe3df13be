package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterEncounterRoutes sets up routes for encounter history and scores
// under /api/encounters
func RegisterEncounterRoutes(r *mux.Router, encounterService *services.EncounterService) {
	controller := controllers.NewEncounterController(encounterService)

	encounterRouter := r.PathPrefix("/api/encounters").Subrouter()
	encounterRouter.HandleFunc("", controller.HandleGetEncounters).Methods("GET")
	encounterRouter.HandleFunc("/delete", controller.HandleDeleteEncounter).Methods("POST")
	encounterRouter.HandleFunc("/score", controller.HandleGetScore).Methods("GET")
}
