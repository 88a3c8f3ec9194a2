package main

import (
	"log"
	"net/http"
	"os"

	"github.com/flashcards/backend/internal/auth"
	"github.com/flashcards/backend/internal/database"
	"github.com/flashcards/backend/internal/decks"
	"github.com/flashcards/backend/internal/generator"
	"github.com/flashcards/backend/internal/middleware"
	"github.com/flashcards/backend/internal/ml"
	"github.com/flashcards/backend/internal/study"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize stores and services
	deckStore := decks.NewStore(db)
	studyStore := study.NewStore(db)
	mlStore := ml.NewStore(db)

	modelPath := ml.ModelPath()
	predictor := ml.NewPredictor(modelPath)

	studyService := study.NewService(studyStore)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	deckHandler := decks.NewHandler(deckStore)
	studyHandler := study.NewHandler(studyService, predictor, mlStore)
	mlHandler := ml.NewHandler(mlStore, predictor, modelPath)
	genHandler := generator.NewHandler(generator.NewGenerator(), deckStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Decks and cards
	protected.HandleFunc("/decks", deckHandler.CreateDeck).Methods("POST")
	protected.HandleFunc("/decks", deckHandler.ListDecks).Methods("GET")
	protected.HandleFunc("/decks/{deckID:[0-9]+}", deckHandler.GetDeck).Methods("GET")
	protected.HandleFunc("/decks/{deckID:[0-9]+}", deckHandler.UpdateDeck).Methods("PUT")
	protected.HandleFunc("/decks/{deckID:[0-9]+}", deckHandler.DeleteDeck).Methods("DELETE")
	protected.HandleFunc("/decks/{deckID:[0-9]+}/cards", deckHandler.CreateCard).Methods("POST")
	protected.HandleFunc("/decks/{deckID:[0-9]+}/cards", deckHandler.ListCards).Methods("GET")
	protected.HandleFunc("/cards/{cardID:[0-9]+}", deckHandler.UpdateCard).Methods("PUT")
	protected.HandleFunc("/cards/{cardID:[0-9]+}", deckHandler.DeleteCard).Methods("DELETE")

	// Draft cards
	protected.HandleFunc("/drafts/generate", genHandler.GenerateDrafts).Methods("POST")
	protected.HandleFunc("/drafts", deckHandler.ListDrafts).Methods("GET")
	protected.HandleFunc("/drafts/accept", deckHandler.AcceptDrafts).Methods("POST")
	protected.HandleFunc("/drafts/reject", deckHandler.RejectDrafts).Methods("POST")

	// Study
	protected.HandleFunc("/study/sessions", studyHandler.StartSession).Methods("POST")
	protected.HandleFunc("/study/sessions/end", studyHandler.EndSession).Methods("POST")
	protected.HandleFunc("/study/answer", studyHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/study/decks/{deckID:[0-9]+}/due", studyHandler.DueCards).Methods("GET")
	protected.HandleFunc("/study/decks/{deckID:[0-9]+}/due/ranked", studyHandler.DueCardsRanked).Methods("GET")
	protected.HandleFunc("/study/decks/{deckID:[0-9]+}/new", studyHandler.NewCards).Methods("GET")
	protected.HandleFunc("/study/cards/{cardID:[0-9]+}/analytics", studyHandler.CardAnalytics).Methods("GET")
	protected.HandleFunc("/study/streak", studyHandler.Streak).Methods("GET")

	// ML model management
	protected.HandleFunc("/ml/status", mlHandler.Status).Methods("GET")
	protected.HandleFunc("/ml/retrain", mlHandler.Retrain).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
