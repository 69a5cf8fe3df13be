package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterSonicRoutes sets up the REST fallback for the sonic pairing flow
// under /api/sonic
func RegisterSonicRoutes(r *mux.Router, sonicService *services.SonicService) {
	controller := controllers.NewSonicController(sonicService)

	sonicRouter := r.PathPrefix("/api/sonic").Subrouter()
	sonicRouter.HandleFunc("/announce", controller.HandleAnnounce).Methods("POST")
	sonicRouter.HandleFunc("/report", controller.HandleReport).Methods("POST")
	sonicRouter.HandleFunc("/stop", controller.HandleStop).Methods("POST")
}
