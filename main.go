package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"sonar_server/routes"
	"sonar_server/services"
	"sonar_server/socket"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Configuration and AWS clients
	config := services.NewConfigService()

	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	// Authoritative in-memory store, loaded from the durable mirror
	store := services.NewStore()
	indexService := services.NewIndexService(store)
	persistence := &services.PersistenceService{
		Store:        store,
		Dynamo:       dynamoService,
		FallbackPath: os.Getenv("SONAR_FALLBACK_FILE"),
	}
	persistence.Bootstrap(context.TODO())
	indexService.Rebuild()

	// Socket server first, so the services can publish through it
	socketServer := socket.NewSocketServer()
	notifier := &socket.PartyNotifier{Server: socketServer}

	// Core services
	partyService := &services.PartyService{Store: store, Index: indexService}
	encounterService := &services.EncounterService{Store: store, Config: config}
	starService := &services.StarService{
		Store:     store,
		Index:     indexService,
		Config:    config,
		Encounter: encounterService,
		Notifier:  notifier,
	}
	relationService := services.NewRelationService(store, indexService, config, encounterService, starService, partyService, notifier)
	sonicService := services.NewSonicService(relationService, config, notifier)
	backupService := &services.BackupService{
		Store:  store,
		Index:  indexService,
		Client: s3Client,
		Bucket: os.Getenv("S3_BUCKET_NAME"),
		Prefix: "backups/",
	}

	socket.RegisterSonicHandlers(socketServer, sonicService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Background sweeps and the mirror flush loop
	go persistence.FlushLoop(context.Background(), config.FlushInterval())
	go func() {
		ticker := time.NewTicker(config.RelationSweepInterval())
		defer ticker.Stop()
		for range ticker.C {
			relationService.SweepExpired(time.Now())
		}
	}()
	go func() {
		ticker := time.NewTicker(config.PointsSweepInterval())
		defer ticker.Stop()
		for range ticker.C {
			encounterService.PrunePointLogs(time.Now())
		}
	}()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Sonar")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterPartyRoutes(r, partyService)
	routes.RegisterSonicRoutes(r, sonicService)
	routes.RegisterRelationRoutes(r, relationService)
	routes.RegisterEncounterRoutes(r, encounterService)
	routes.RegisterStarRoutes(r, starService)
	routes.RegisterOpsRoutes(r, persistence, backupService)

	// Socket.IO endpoint
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
