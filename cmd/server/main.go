package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"productify/internal/cache"
	"productify/internal/config"
	"productify/internal/db"
	"productify/internal/handler"
	"productify/internal/identity"
	"productify/internal/model"
	"productify/internal/repository"
	"productify/internal/router"
	"productify/internal/service"
	"productify/pkg/log"
)

// @title Productify API
// @version 1.0
// @description Marketplace CRUD API: users create products, others comment, owners and the configured site owner mutate.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the identity provider's JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.AppEnv)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Comment{},
	); err != nil {
		logger.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Identity resolution and services
	resolver := identity.NewResolver(userRepo, cfg.OwnerUserID, cfg.OwnerSiteEmail)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, cacheClient)
	commentService := service.NewCommentService(commentRepo, productRepo, cacheClient)

	// Handlers
	userHandler := handler.NewUserHandler(userService, logger)
	productHandler := handler.NewProductHandler(productService, resolver, logger)
	commentHandler := handler.NewCommentHandler(commentService, resolver, logger)

	router.Register(e, cfg, userHandler, productHandler, commentHandler)

	addr := ":" + cfg.ServerPort
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server start")
	}
}
