package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"caloriehub/internal/auth"
	"caloriehub/internal/config"
	"caloriehub/internal/ingredients"
	"caloriehub/internal/meals"
	"caloriehub/internal/storage"
	"caloriehub/internal/storage/memory"
	"caloriehub/internal/storage/postgres"
)

// Server wires storage, services and routes behind one http.Handler.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	users          storage.UsersStorage
	ingredients    storage.IngredientsStorage
	meals          storage.MealsStorage
	authMiddleware *auth.Middleware
}

func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage picks the backend: Postgres when DATABASE_URL is set and
// reachable, in-memory otherwise.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("Using in-memory storage")
		s.useMemory()
		return
	}

	log.Println("Connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("PostgreSQL connection failed: %v", err)
		log.Println("Falling back to in-memory storage")
		s.useMemory()
		return
	}

	log.Println("PostgreSQL connected")
	s.users = pgStorage
	s.ingredients = pgStorage.GetIngredientsStorage()
	s.meals = pgStorage.GetMealsStorage()
}

func (s *Server) useMemory() {
	memStorage := memory.New()
	s.users = memStorage
	s.ingredients = memStorage.GetIngredientsStorage()
	s.meals = memStorage.GetMealsStorage()
}

func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth API
	authService := auth.NewService(s.config, s.users, auth.NewBcryptHasher(s.config.BcryptCost))
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(authService)

	s.mux.HandleFunc("GET /api/auth/health", authHandler.HandleHealth)
	s.mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	s.mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	s.mux.HandleFunc("POST /api/auth/verify-token", authHandler.HandleVerifyToken)
	s.mux.HandleFunc("GET /api/auth/verify-token", authHandler.HandleVerifySession)
	s.mux.HandleFunc("GET /api/auth/profile", authHandler.HandleGetProfile)
	s.mux.HandleFunc("PUT /api/auth/profile", authHandler.HandleUpdateProfile)
	s.mux.HandleFunc("PUT /api/auth/password", authHandler.HandleChangePassword)
	s.mux.HandleFunc("DELETE /api/auth/account", authHandler.HandleDeleteAccount)
	s.mux.HandleFunc("POST /api/auth/logout", authHandler.HandleLogout)

	// Ingredients API
	ingredientService := ingredients.NewService(s.config, s.ingredients)
	ingredientHandler := ingredients.NewHandler(ingredientService)

	s.mux.HandleFunc("POST /api/ingredients", ingredientHandler.HandleCreate)
	s.mux.HandleFunc("GET /api/ingredients", ingredientHandler.HandleList)
	s.mux.HandleFunc("GET /api/ingredients/search", ingredientHandler.HandleSearch)
	s.mux.HandleFunc("POST /api/ingredients/calculate-calories", ingredientHandler.HandleCalculate)
	s.mux.HandleFunc("POST /api/ingredients/calculate-bulk-calories", ingredientHandler.HandleCalculateBulk)
	s.mux.HandleFunc("GET /api/ingredients/", ingredientHandler.HandleGet)
	s.mux.HandleFunc("PUT /api/ingredients/", ingredientHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /api/ingredients/", ingredientHandler.HandleDelete)

	// Meals API
	mealService := meals.NewService(s.meals, s.ingredients)
	mealHandler := meals.NewHandler(mealService)

	s.mux.HandleFunc("POST /api/meals", mealHandler.HandleCreate)
	s.mux.HandleFunc("GET /api/meals", mealHandler.HandleList)
	s.mux.HandleFunc("GET /api/meals/calories-summary", mealHandler.HandleSummary)
	s.mux.HandleFunc("GET /api/meals/date-range", mealHandler.HandleDateRange)
	s.mux.HandleFunc("GET /api/meals/", mealHandler.HandleGet)
	s.mux.HandleFunc("PUT /api/meals/", mealHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /api/meals/", mealHandler.HandleDelete)
}

// Handler builds the middleware chain (outermost first):
// CORS → Rate Limit → Auth → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.RequireAuth(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("Server listening on http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Auth API: http://localhost%s/api/auth\n", addr)

	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) Close() error {
	return s.users.Close()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
