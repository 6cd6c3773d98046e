package app

import (
	"authapi/internal/config"
	"authapi/internal/db"
	"authapi/internal/handlers"
	"authapi/internal/repository"
	"authapi/internal/routes"
	"authapi/internal/services"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)

	// Сервисы
	tokenService, err := services.NewTokenService(cfg.Secret)
	if err != nil {
		return nil, err
	}
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo, emailService)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, tokenService, cfg)
	homeHandler := handlers.NewHomeHandler()

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, homeHandler, tokenService)

	return router, nil
}
