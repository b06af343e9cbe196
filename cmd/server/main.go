package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app"
	"github.com/Ankur21bera/edemy-backend/app/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := app.OpenDB(cfg.DB)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	logger.Info("connected to Postgres")

	media, err := app.NewS3MediaStore(context.Background(), cfg.Media)
	if err != nil {
		logger.Fatal("failed to initialize media store", zap.Error(err))
	}

	router, err := app.NewRouter(app.RouterDeps{
		Config:   cfg,
		Store:    app.NewStore(db),
		Sessions: app.NewStripeClient(cfg.Stripe.SecretKey),
		Roles:    app.NewClerkRoleStore(cfg.Clerk.SecretKey),
		Media:    media,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to initialize router", zap.Error(err))
	}

	if err := router.Run("0.0.0.0:" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
