package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/bootstrap"
	"github.com/recipe-parser/app/config"
	"github.com/recipe-parser/app/controllers"
	"github.com/recipe-parser/routes"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "đường dẫn file cấu hình (mặc định config/app.yaml)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	// 2. Khởi tạo logger
	logger, err := bootstrap.InitLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Recipe Parser Service", zap.String("env", cfg.App.Env))

	// 3. Kết nối MongoDB, cache, Meilisearch và khởi tạo services
	ctx := context.Background()
	container, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer func() {
		if err := container.Close(context.Background()); err != nil {
			logger.Error("Error closing connections", zap.Error(err))
		}
	}()

	// 4. Tạo MongoDB indexes
	if err := container.Store.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure MongoDB indexes", zap.Error(err))
	}

	// 5. Build Meilisearch indexes nếu cần
	if container.Searcher != nil {
		if err := container.Searcher.BuildIndexes(); err != nil {
			logger.Warn("Failed to build Meilisearch indexes", zap.Error(err))
		}
	}

	// 6. Khởi tạo controllers
	ctrl := routes.Controllers{
		Ingredient: controllers.NewIngredientController(container.Ingredient, logger),
		Vocabulary: controllers.NewVocabularyController(container.Vocabulary, logger),
		Filter:     controllers.NewFilterController(container.Compiler, logger),
		Admin:      controllers.NewAdminController(container.Admin, logger),
		Health:     controllers.NewHealthController(container.Checks(), logger),
	}

	// 7. Khởi tạo Gin router và routes
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, ctrl, routes.Options{
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
		Logger:         logger,
	})

	// 8. Khởi động server
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Recipe Parser Service starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
