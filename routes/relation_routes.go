package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterRelationRoutes sets up routes for relation lookups and the digital
// connect flow under /api/relations
func RegisterRelationRoutes(r *mux.Router, relationService *services.RelationService) {
	controller := controllers.NewRelationController(relationService)

	relationRouter := r.PathPrefix("/api/relations").Subrouter()
	relationRouter.HandleFunc("", controller.HandleGetActiveRelations).Methods("GET")
	relationRouter.HandleFunc("/connect/request", controller.HandleConnectRequest).Methods("POST")
	relationRouter.HandleFunc("/connect/accept", controller.HandleConnectAccept).Methods("POST")
	relationRouter.HandleFunc("/{relationId}", controller.HandleGetRelation).Methods("GET")
}
