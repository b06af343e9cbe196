package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app/config"
	"github.com/Ankur21bera/edemy-backend/auth"
)

// RouterDeps carries the constructed clients each handler group needs.
type RouterDeps struct {
	Config   *config.Config
	Store    *Store
	Sessions CheckoutSessions
	Roles    RoleStore
	Media    MediaStore
	Logger   *zap.Logger
}

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter(d RouterDeps) (*gin.Engine, error) {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	payments := NewPaymentHandler(d.Store, d.Sessions, d.Config.Stripe, d.Logger)
	educator := NewEducatorHandler(d.Store, d.Roles, d.Media, d.Logger)
	users := NewUserHandler(d.Store, d.Logger)
	clerkWebhooks := NewClerkWebhookHandler(d.Store, d.Config.Clerk.WebhookSecret, d.Logger)

	router.GET("/health", Health)

	// Webhooks authenticate by payload signature, not bearer token.
	router.POST("/stripe", payments.StripeWebhook)
	router.POST("/clerk", clerkWebhooks.Handle)

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	api := router.Group("/api")
	api.Use(auth.Middleware(verifier, auth.MiddlewareConfig{
		OnAuthenticated: func(c *gin.Context, claims *auth.Claims) error {
			return d.Store.UpsertUserFromClaims(c.Request.Context(), claims)
		},
	}))

	user := api.Group("/user")
	user.GET("/data", users.GetUserData)
	user.GET("/enrolled-courses", users.EnrolledCourses)
	user.POST("/purchase", payments.PurchaseCourse)
	user.POST("/update-course-progress", users.UpdateCourseProgress)
	user.POST("/get-course-progress", users.GetCourseProgress)
	user.POST("/add-rating", users.AddRating)

	ed := api.Group("/educator")
	ed.POST("/update-role", educator.UpdateRole)

	edOnly := ed.Group("")
	edOnly.Use(educator.RequireEducator())
	edOnly.POST("/add-course", educator.AddCourse)
	edOnly.GET("/courses", educator.GetCourses)
	edOnly.GET("/dashboard", educator.Dashboard)
	edOnly.GET("/enrolled-students", educator.EnrolledStudents)

	return router, nil
}

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
