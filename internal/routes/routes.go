package routes

import (
	"authapi/internal/handlers"
	"authapi/internal/middleware"
	"authapi/internal/services"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	homeHandler *handlers.HomeHandler,
	tokenService *services.TokenService,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recoverer)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/create", authHandler.Create).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/forgot", authHandler.Forgot).Methods("POST")
	api.HandleFunc("/reset/{token}", authHandler.Reset).Methods("POST")

	// --- Защищённые токеном ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.VerifyToken(tokenService))
	protected.HandleFunc("/me", authHandler.Me).Methods("POST")

	router.HandleFunc("/", homeHandler.Home).Methods("GET")
}
