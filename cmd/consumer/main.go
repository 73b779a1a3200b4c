package main

import (
	"context"

	"go-institute/internal/app"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/config"
	"go-institute/internal/shared/telemetry"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	shutdown := telemetry.Setup(cfg.ServiceName+"-consumer", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	defer shutdown(context.Background())

	apperror.Init()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
