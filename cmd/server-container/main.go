package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app"
	"github.com/Ankur21bera/edemy-backend/app/config"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := app.OpenDB(cfg.DB)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}

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

	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
