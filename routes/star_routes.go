package routes

import (
	"sonar_server/controllers"
	"sonar_server/services"

	"github.com/gorilla/mux"
)

// RegisterStarRoutes sets up routes for the star economy under /api/stars
func RegisterStarRoutes(r *mux.Router, starService *services.StarService) {
	controller := controllers.NewStarController(starService)

	starRouter := r.PathPrefix("/api/stars").Subrouter()
	starRouter.HandleFunc("", controller.HandleGetStars).Methods("GET")
	starRouter.HandleFunc("/pending", controller.HandleGetPendingStars).Methods("GET")
	starRouter.HandleFunc("/donate", controller.HandleDonate).Methods("POST")
	starRouter.HandleFunc("/purchase", controller.HandlePurchase).Methods("POST")
}
