package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkFitAPI/handlers"
	"linkFitAPI/internal/catalog"
	"linkFitAPI/internal/database"
	"linkFitAPI/middleware"
	"linkFitAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	authService      *services.AuthService
	userService      *services.UserService
	postService      *services.PostService
	challengeService *services.ChallengeService
	shareService     *services.ShareService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if os.Getenv("AUTH_JWT_SECRET") == "" {
		log.Fatal("AUTH_JWT_SECRET environment variable is not set")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := database.Migrate(dbURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database migrations applied")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	firebaseAuth, err := services.NewFirebaseAuthClient("./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize Firebase auth:", err)
	}
	log.Println("Firebase auth initialized successfully")

	exerciseCatalog, err := catalog.NewClientFromEnv()
	if err != nil {
		log.Fatal("Failed to initialize exercise catalog client:", err)
	}

	authService = services.NewAuthService(dbPool, firebaseAuth)
	userService = services.NewUserService(dbPool)
	postService = services.NewPostService(dbPool)
	challengeService = services.NewChallengeService(dbPool, exerciseCatalog)
	shareService = services.NewShareService(postService, challengeService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, shareService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "linkfit-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/session", authHandler.EstablishSession).Methods("POST")

	// -------------------------------------------------------------------------
	// CHALLENGE ROUTES (GUEST-ACCESSIBLE)
	// -------------------------------------------------------------------------
	// Optional auth: signed-in users get their own key, everyone else shares
	// the guest key.
	chal := api.PathPrefix("/challenge").Subrouter()
	chal.Use(middleware.OptionalAuthMiddleware)

	chal.HandleFunc("", challengeHandler.GetChallenge).Methods("GET")
	chal.HandleFunc("/progress", challengeHandler.GetProgress).Methods("GET")
	chal.HandleFunc("/day/{day}/exercise", challengeHandler.GetDayExercise).Methods("GET")
	chal.HandleFunc("/day/{day}/select", challengeHandler.SelectDay).Methods("POST")
	chal.HandleFunc("/day/{day}/complete", challengeHandler.CompleteDay).Methods("POST")
	chal.HandleFunc("/day/{day}/reset", challengeHandler.ResetDay).Methods("POST")
	chal.HandleFunc("/reset", challengeHandler.ResetChallenge).Methods("POST")
	chal.HandleFunc("/day/{day}/share", challengeHandler.ShareDay).Methods("POST")
	chal.HandleFunc("/share-badge", challengeHandler.ShareBadge).Methods("POST")
	chal.HandleFunc("/share-complete", challengeHandler.ShareChallengeComplete).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")
	protected.HandleFunc("/user/badges", userHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/users/{userId}/profile", userHandler.GetPublicProfile).Methods("GET")

	protected.HandleFunc("/posts", postHandler.GetFeed).Methods("GET")
	protected.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	protected.HandleFunc("/posts/{postId}", postHandler.DeletePost).Methods("DELETE")
	protected.HandleFunc("/posts/{postId}/like", postHandler.LikePost).Methods("POST")
	protected.HandleFunc("/posts/{postId}/like", postHandler.UnlikePost).Methods("DELETE")
	protected.HandleFunc("/posts/{postId}/comments", postHandler.GetComments).Methods("GET")
	protected.HandleFunc("/posts/{postId}/comments", postHandler.AddComment).Methods("POST")
	protected.HandleFunc("/posts/{postId}/comments/{commentId}", postHandler.DeleteComment).Methods("DELETE")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
