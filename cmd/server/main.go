package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/constitution-quest/backend/internal/auth"
	"github.com/constitution-quest/backend/internal/content"
	"github.com/constitution-quest/backend/internal/database"
	"github.com/constitution-quest/backend/internal/discussions"
	"github.com/constitution-quest/backend/internal/generator"
	"github.com/constitution-quest/backend/internal/leaderboard"
	"github.com/constitution-quest/backend/internal/middleware"
	"github.com/constitution-quest/backend/internal/progress"
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

	// Stores
	contentStore := content.NewStore(db)
	progressStore := progress.NewStore(db)
	discussionStore := discussions.NewStore(db)
	leaderboardStore := leaderboard.NewStore(db)

	// Leaderboard, optionally cache-accelerated
	leaderboardSvc := leaderboard.NewService(leaderboardStore)
	rewardSvc := progress.NewService(progressStore, contentStore).WithRanker(leaderboardSvc)
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		cache := leaderboard.NewCache(rdb)
		leaderboardSvc.WithCache(cache)
		rewardSvc.WithScoreSink(cache)
		log.Printf("Leaderboard cache enabled at %s", addr)
	}

	// Handlers
	authHandler := auth.NewHandler(db)
	contentHandler := content.NewHandler(contentStore, generator.NewGenerator())
	progressHandler := progress.NewHandler(rewardSvc)
	discussionHandler := discussions.NewHandler(discussionStore, rewardSvc)
	leaderboardHandler := leaderboard.NewHandler(leaderboardSvc)

	// Weekly XP reset
	go rewardSvc.StartWeeklyResetWorker(context.Background())

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/discussions", discussionHandler.List).Methods("GET")
	api.HandleFunc("/discussions/{id}", discussionHandler.Get).Methods("GET")

	// Leaderboard personalizes for signed-in users but stays public
	api.Handle("/leaderboard", middleware.OptionalAuth(http.HandlerFunc(leaderboardHandler.Get))).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/modules", contentHandler.ListModules).Methods("GET")
	protected.HandleFunc("/modules/{moduleId}", contentHandler.GetModule).Methods("GET")
	protected.HandleFunc("/modules/{moduleId}/chapters/{chapterId}", contentHandler.GetChapter).Methods("GET")
	protected.HandleFunc("/modules/{moduleId}/chapters/{chapterId}/quiz", contentHandler.GetQuiz).Methods("GET")
	protected.HandleFunc("/progress/chapter-complete", progressHandler.CompleteChapter).Methods("POST")
	protected.HandleFunc("/progress/quiz-submit", progressHandler.SubmitQuiz).Methods("POST")
	protected.HandleFunc("/progress", progressHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/badges", progressHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/discussions", discussionHandler.Create).Methods("POST")
	protected.HandleFunc("/discussions/{id}/comments", discussionHandler.CreateComment).Methods("POST")
	protected.Handle("/admin/modules/{moduleId}/chapters/{chapterId}/quiz/generate",
		middleware.AdminOnly(http.HandlerFunc(contentHandler.GenerateQuiz))).Methods("POST")

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
