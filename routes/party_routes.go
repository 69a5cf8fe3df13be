package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterPartyRoutes sets up routes for the party directory under /api/parties
func RegisterPartyRoutes(r *mux.Router, partyService *services.PartyService) {
	controller := controllers.NewPartyController(partyService)

	partyRouter := r.PathPrefix("/api/parties").Subrouter()
	partyRouter.HandleFunc("", controller.HandleCreateParty).Methods("POST")
	partyRouter.HandleFunc("/by-identity", controller.HandleGetPartyByIdentity).Methods("POST")
	partyRouter.HandleFunc("/check-nickname", controller.HandleCheckNickname).Methods("GET")
	partyRouter.HandleFunc("/nickname", controller.HandleRename).Methods("PATCH")
	partyRouter.HandleFunc("/events", controller.HandleCreateEvent).Methods("POST")
	partyRouter.HandleFunc("/events", controller.HandleGetEvents).Methods("GET")
	partyRouter.HandleFunc("/service-providers", controller.HandleCreateServiceProvider).Methods("POST")
	partyRouter.HandleFunc("/{partyId}", controller.HandleGetParty).Methods("GET")
}
