package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/recipe-parser/app/bootstrap"
	"github.com/recipe-parser/app/config"
	"github.com/recipe-parser/app/services"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "đường dẫn file cấu hình")
	seedPath := flag.String("file", "config/seed.yaml", "file YAML vocabulary")
	rebuild := flag.Bool("rebuild", true, "cập nhật settings Meilisearch trước khi index")
	dryRun := flag.Bool("dry-run", false, "chỉ validate file seed")
	flag.Parse()

	// Đọc và validate file seed
	seed, err := services.LoadSeedFile(*seedPath)
	if err != nil {
		log.Fatalf("Không thể đọc file seed: %v", err)
	}
	if warnings := services.ValidateSeed(seed); len(warnings) > 0 {
		log.Fatalf("File seed không hợp lệ:\n  %s", strings.Join(warnings, "\n  "))
	}
	fmt.Printf("Seed group %s: %d units, %d foods\n", seed.GroupID, len(seed.Units), len(seed.Foods))
	if *dryRun {
		fmt.Println("Validation hoàn thành, không ghi dữ liệu (dry run)")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}
	logger, err := bootstrap.InitLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	container, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer container.Close(ctx)

	if err := container.Store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Không thể tạo MongoDB indexes", zap.Error(err))
	}

	result, err := container.Admin.Seed(ctx, seed, *rebuild)
	if err != nil {
		logger.Fatal("Seed thất bại", zap.Error(err))
	}

	fmt.Printf("Đã ghi %d bản ghi (%d units, %d foods) trong %dms\n",
		result.Written, result.UnitsProcessed, result.FoodsProcessed, result.ProcessingTimeMs)
	if !result.Indexed {
		fmt.Println("Chưa index vào Meilisearch (search tắt hoặc lỗi, xem log)")
	}
}
