package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app/config"
	"github.com/Ankur21bera/edemy-backend/app/models"
	"github.com/Ankur21bera/edemy-backend/auth"
)

// PaymentHandler owns the purchase lifecycle: opening checkout sessions
// and reconciling the gateway's asynchronous webhook events.
type PaymentHandler struct {
	store    *Store
	sessions CheckoutSessions
	cfg      config.StripeConfig
	logger   *zap.Logger
}

func NewPaymentHandler(store *Store, sessions CheckoutSessions, cfg config.StripeConfig, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{store: store, sessions: sessions, cfg: cfg, logger: logger}
}

// PurchaseCourse creates a pending purchase and opens a checkout session
// for the discounted course price. The purchase row is written before the
// gateway call; a failed call leaves it pending with no session.
func (h *PaymentHandler) PurchaseCourse(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "invalid request"})
		return
	}

	origin := strings.TrimRight(c.GetHeader("Origin"), "/")
	if origin == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "missing origin header"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.store.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Data not found"})
			return
		}
		h.logger.Error("purchase user lookup failed", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load user"})
		return
	}

	course, err := h.store.GetCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Data not found"})
			return
		}
		h.logger.Error("purchase course lookup failed", zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load course"})
		return
	}

	amount := DiscountedPrice(course.Price, course.Discount)

	purchase := models.Purchase{
		ID:       uuid.NewString(),
		CourseID: course.ID,
		UserID:   user.ID,
		Amount:   amount,
		Status:   models.PurchasePending,
	}
	if err := h.store.CreatePurchase(ctx, purchase); err != nil {
		h.logger.Error("purchase insert failed", zap.String("course_id", course.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to create purchase"})
		return
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(h.cfg.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(course.Title),
					},
					UnitAmount: stripe.Int64(AmountCents(amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(origin + "/loading/my-enrollments"),
		CancelURL:  stripe.String(origin),
		Metadata: map[string]string{
			"purchaseId": purchase.ID,
		},
	}

	sess, err := h.sessions.Create(params)
	if err != nil {
		// The pending purchase stays behind; nothing will ever settle it.
		h.logger.Error("stripe checkout session failed",
			zap.String("purchase_id", purchase.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session_url": sess.URL})
}

// StripeWebhook reconciles gateway payment events with stored purchases.
// The signature check runs before any store access; everything after it is
// idempotent, so the gateway's at-least-once delivery is safe to replay.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	endpointSecret := h.cfg.WebhookSecret
	if endpointSecret == "" {
		h.logger.Error("stripe webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		sigHeader,
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		h.logger.Warn("stripe webhook signature failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		if err := h.settlePayment(c, event, models.PurchaseCompleted); err != nil {
			return
		}
	case "payment_intent.payment_failed":
		if err := h.settlePayment(c, event, models.PurchaseFailed); err != nil {
			return
		}
	default:
		// Intentionally ignore unhandled events.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// settlePayment resolves the purchase behind a payment intent and moves it
// out of pending. Unknown sessions and purchases are swallowed; a non-nil
// return means an error response was already written and the gateway
// should retry.
func (h *PaymentHandler) settlePayment(c *gin.Context, event stripe.Event, status models.PurchaseStatus) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.logger.Error("stripe payment intent unmarshal failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment intent payload"})
		return err
	}

	ctx := c.Request.Context()

	sess, err := h.sessions.ByPaymentIntent(ctx, intent.ID)
	if err != nil {
		h.logger.Error("stripe session lookup failed", zap.String("payment_intent", intent.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
		return err
	}
	if sess == nil || sess.Metadata["purchaseId"] == "" {
		// Unknown or foreign session; acknowledge and move on.
		return nil
	}
	purchaseID := sess.Metadata["purchaseId"]

	purchase, err := h.store.GetPurchase(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		h.logger.Error("purchase lookup failed", zap.String("purchase_id", purchaseID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load purchase"})
		return err
	}

	// Duplicate delivery: the purchase already settled, nothing to do.
	if purchase.Status != models.PurchasePending {
		h.logger.Info("stripe event for settled purchase ignored",
			zap.String("purchase_id", purchaseID), zap.String("status", string(purchase.Status)))
		return nil
	}

	if status == models.PurchaseCompleted {
		if err := h.enroll(c, purchase); err != nil {
			return err
		}
	}

	updated, err := h.store.SetPurchaseStatusIfPending(ctx, purchaseID, status)
	if err != nil {
		h.logger.Error("purchase status update failed", zap.String("purchase_id", purchaseID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update purchase"})
		return err
	}
	if !updated {
		// A concurrent delivery won the race; enrollment above is idempotent.
		h.logger.Info("purchase already settled concurrently", zap.String("purchase_id", purchaseID))
	}
	return nil
}

// enroll links the purchase's user and course in both directions. When
// either side no longer exists the purchase still settles, just without an
// enrollment.
func (h *PaymentHandler) enroll(c *gin.Context, purchase models.Purchase) error {
	ctx := c.Request.Context()

	_, userErr := h.store.GetUser(ctx, purchase.UserID)
	_, courseErr := h.store.GetCourse(ctx, purchase.CourseID)
	if errors.Is(userErr, ErrNotFound) || errors.Is(courseErr, ErrNotFound) {
		h.logger.Warn("completing purchase without enrollment",
			zap.String("purchase_id", purchase.ID),
			zap.String("user_id", purchase.UserID),
			zap.String("course_id", purchase.CourseID))
		return nil
	}
	if userErr != nil || courseErr != nil {
		err := userErr
		if err == nil {
			err = courseErr
		}
		h.logger.Error("enrollment lookup failed", zap.String("purchase_id", purchase.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load enrollment data"})
		return err
	}

	if err := h.store.Enroll(ctx, purchase.CourseID, purchase.UserID); err != nil {
		h.logger.Error("enrollment failed", zap.String("purchase_id", purchase.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enroll user"})
		return err
	}
	return nil
}
