package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isletme-backend/internal/config"
	"isletme-backend/internal/database"
	"isletme-backend/internal/logger"
	"isletme-backend/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env yoksa ortam değişkenleriyle devam
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.Server.AppEnv, cfg.Logger)
	if err != nil {
		log.Fatalf("logger oluşturulamadı: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("geçersiz yapılandırma", zap.Error(err))
	}
	for _, w := range cfg.Warnings() {
		zl.Warn(w)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Open(ctx, cfg.Database, zl)
	cancel()
	if err != nil {
		zl.Fatal("veritabanı açılamadı", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	app := server.New(cfg, db, zl)

	go func() {
		zl.Info("Server listening", zap.String("port", cfg.Server.HTTPPort), zap.String("env", cfg.Server.AppEnv))
		if err := app.Listen(":" + cfg.Server.HTTPPort); err != nil {
			zl.Fatal("server durdu", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("shutdown hatası", zap.Error(err))
	}
}
