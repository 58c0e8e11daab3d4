package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/homeservice-backend/internal/config"
	"github.com/ignatzorin/homeservice-backend/internal/db"
	"github.com/ignatzorin/homeservice-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/homeservice-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/homeservice-backend/internal/http/router"
	"github.com/ignatzorin/homeservice-backend/internal/logger"
	"github.com/ignatzorin/homeservice-backend/internal/repository"
	"github.com/ignatzorin/homeservice-backend/internal/service"
	"github.com/ignatzorin/homeservice-backend/internal/storage"
	"github.com/ignatzorin/homeservice-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	addressRepo := repository.NewAddressRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	settlementRepo := repository.NewSettlementRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo(hub.Run)

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, walletRepo, catalogRepo, tokenManager, cfg.Currency)
	walletService := service.NewWalletService(walletRepo, notificationService, cfg.Currency, cfg.TopUpMinMinor, cfg.TopUpMaxMinor)
	jobService := service.NewJobService(jobRepo, settlementRepo, addressRepo, catalogRepo, photoStorage, userRepo, notificationService, cfg.CommissionRate, cfg.MaxJobPhotos)
	offerService := service.NewOfferService(offerRepo, settlementRepo, jobRepo, userRepo, notificationService)
	reviewService := service.NewReviewService(reviewRepo, jobRepo)
	profileService := service.NewProfileService(addressRepo, catalogRepo, userRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(authService, profileService)
	jobHandler := httpHandlers.NewJobHandler(authService, jobService, offerService, reviewService)
	offerHandler := httpHandlers.NewOfferHandler(authService, offerService)
	walletHandler := httpHandlers.NewWalletHandler(authService, walletService)
	reviewHandler := httpHandlers.NewReviewHandler(authService, reviewService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogRepo)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, jobHandler, offerHandler, walletHandler, reviewHandler, notificationHandler, catalogHandler, healthHandler, wsHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
