package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/recipe-parser/app/bootstrap"
	"github.com/recipe-parser/app/config"
	"github.com/recipe-parser/internal/reprocess"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "đường dẫn file cấu hình")
	inPath := flag.String("in", "-", "file NDJSON recipes, - là stdin")
	outPath := flag.String("out", "-", "file NDJSON kết quả, - là stdout")
	parserName := flag.String("parser", "", "brute | openai, rỗng dùng parser mặc định")
	workers := flag.Int("workers", 2, "số recipe xử lý song song")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logger, err := bootstrap.InitLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("Cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Recipe Reprocess Worker",
		zap.String("parser", *parserName),
		zap.Int("workers", *workers))

	// Dừng batch khi nhận SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer container.Close(context.Background())

	in, closeIn := openInput(*inPath, logger)
	defer closeIn()
	out, closeOut := openOutput(*outPath, logger)
	defer closeOut()

	summary, err := reprocess.Run(ctx, in, out, container.Ingredient, reprocess.Options{
		Parser:  *parserName,
		Workers: *workers,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("Worker stopped", zap.Error(err), zap.Int("done", summary.Done))
		return
	}
	logger.Info("Worker exited", zap.Int("done", summary.Done), zap.Int("skipped", summary.Skipped))
}

func openInput(path string, logger *zap.Logger) (io.Reader, func()) {
	if path == "-" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Cannot open input", zap.String("path", path), zap.Error(err))
	}
	return f, func() { _ = f.Close() }
}

func openOutput(path string, logger *zap.Logger) (io.Writer, func()) {
	if path == "-" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Fatal("Cannot create output", zap.String("path", path), zap.Error(err))
	}
	return f, func() {
		if err := f.Close(); err != nil {
			logger.Error("Cannot close output", zap.Error(err))
		}
	}
}
