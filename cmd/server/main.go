package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"supper-club/config"
	"supper-club/internal/cache"
	"supper-club/internal/database"
	"supper-club/internal/handler"
	"supper-club/internal/middleware"
	"supper-club/internal/model"
	"supper-club/internal/queue"
	"supper-club/internal/repository"
	"supper-club/internal/service"
	"supper-club/internal/worker"
	"supper-club/pkg/auth"
	"supper-club/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.MigrateUp(&cfg.Database, ""); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// Repositories
	eventRepo := repository.NewEventRepository(pool)
	registrationRepo := repository.NewRegistrationRepository(pool)
	postRepo := repository.NewPostRepository(pool)

	// Cache & queue
	inventoryManager := cache.NewRedisCapacityInventoryManager(rdb)
	confirmationQueue, err := queue.NewRedisStreamConfirmationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize confirmation queue: %v", err)
	}

	// Services
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, "supper-club")
	eventService := service.NewEventService(eventRepo, registrationRepo, inventoryManager)
	registrationService := service.NewRegistrationService(pool, registrationRepo, eventRepo, inventoryManager, confirmationQueue)
	postService := service.NewPostService(postRepo, eventRepo)
	authService := service.NewAuthService(cfg.Auth.AdminPassword, jwtManager)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seedEventIfEmpty(ctx, eventRepo)
	warmUpInventories(ctx, eventRepo, registrationRepo, inventoryManager)

	// Worker
	confirmationWorker := worker.NewConfirmationWorker(service.NewLogConfirmationService(), confirmationQueue)
	if err := confirmationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start confirmation worker: %v", err)
	}

	// Router
	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	adminAuth := middleware.AdminAuth(jwtManager)
	handler.NewAuthHandler(authService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router, adminAuth)
	handler.NewRegistrationHandler(registrationService).RegisterRoutes(router, adminAuth)
	handler.NewPostHandler(postService).RegisterRoutes(router, adminAuth)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.WithComponent("server").Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithComponent("server").Error("shutdown failed", zap.Error(err))
	}
}

// seedEventIfEmpty 資料庫沒有任何活動時建立一筆預設活動
func seedEventIfEmpty(ctx context.Context, eventRepo repository.EventRepository) {
	events, err := eventRepo.List(ctx)
	if err != nil {
		logger.WithComponent("server").Error("list events for seed failed", zap.Error(err))
		return
	}
	if len(events) > 0 {
		return
	}

	eventTime := "6:00 PM"
	charity := "SF-Marin Food Bank"
	price := "$40 suggested donation"
	seed := &model.Event{
		EventID:         uuid.New(),
		Title:           "Inaugural Supper Club Dinner",
		Date:            time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour),
		Time:            &eventTime,
		Location:        "555 Bryant Street, San Francisco",
		MenuDescription: "Family style dinner, menu announced the week of the event",
		Capacity:        20,
		Charity:         &charity,
		SuggestedPrice:  &price,
	}
	if _, err := eventRepo.Create(ctx, seed); err != nil {
		logger.WithComponent("server").Error("seed event failed", zap.Error(err))
		return
	}
	logger.WithComponent("server").Info("seeded default event", zap.String("title", seed.Title))
}

// warmUpInventories 啟動時將未來活動的剩餘名額寫入 Redis
func warmUpInventories(
	ctx context.Context,
	eventRepo repository.EventRepository,
	registrationRepo repository.RegistrationRepository,
	inventoryManager cache.RedisCapacityInventoryManager,
) {
	events, err := eventRepo.List(ctx)
	if err != nil {
		logger.WithComponent("server").Error("list events for warm-up failed", zap.Error(err))
		return
	}

	now := time.Now().Truncate(24 * time.Hour)
	for _, event := range events {
		if event.Date.Before(now) {
			continue
		}
		taken, err := registrationRepo.CountGuests(ctx, event.ID)
		if err != nil {
			logger.WithComponent("server").Error("count guests failed", zap.Int("event_id", event.ID), zap.Error(err))
			continue
		}
		spots := event.Capacity - taken
		if spots < 0 {
			spots = 0
		}
		if err := inventoryManager.WarmUpInventory(ctx, event.ID, spots); err != nil {
			logger.WithComponent("server").Error("warm up inventory failed", zap.Int("event_id", event.ID), zap.Error(err))
			continue
		}
		logger.WithComponent("server").Info("warmed capacity inventory", zap.Int("event_id", event.ID), zap.Int("spots", spots))
	}
}
