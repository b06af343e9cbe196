package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkuser "github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app/models"
)

const RoleEducator = "educator"

// RoleStore reads and writes a user's role in the external identity store.
type RoleStore interface {
	SetEducatorRole(ctx context.Context, userID string) error
	Role(ctx context.Context, userID string) (string, error)
}

type clerkRoleStore struct {
	users *clerkuser.Client
}

// NewClerkRoleStore builds a RoleStore over the Clerk backend API.
func NewClerkRoleStore(secretKey string) RoleStore {
	cfg := &clerk.ClientConfig{}
	cfg.Key = clerk.String(secretKey)
	return &clerkRoleStore{users: clerkuser.NewClient(cfg)}
}

func (r *clerkRoleStore) SetEducatorRole(ctx context.Context, userID string) error {
	metadata := json.RawMessage(fmt.Sprintf(`{"role":%q}`, RoleEducator))
	_, err := r.users.UpdateMetadata(ctx, userID, &clerkuser.UpdateMetadataParams{
		PublicMetadata: &metadata,
	})
	return err
}

func (r *clerkRoleStore) Role(ctx context.Context, userID string) (string, error) {
	u, err := r.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(u.PublicMetadata) == 0 {
		return "", nil
	}
	var meta struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(u.PublicMetadata, &meta); err != nil {
		return "", err
	}
	return meta.Role, nil
}

// ClerkWebhookHandler syncs identity-provider user events into the local
// users table. Payloads are authenticated with Svix signatures, the scheme
// Clerk signs its webhooks with.
type ClerkWebhookHandler struct {
	store  *Store
	secret string
	logger *zap.Logger
}

func NewClerkWebhookHandler(store *Store, secret string, logger *zap.Logger) *ClerkWebhookHandler {
	return &ClerkWebhookHandler{store: store, secret: secret, logger: logger}
}

type clerkEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkUserData struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ImageURL       string `json:"image_url"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (h *ClerkWebhookHandler) Handle(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid payload"})
		return
	}

	if h.secret == "" {
		h.logger.Error("clerk webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "webhook not configured"})
		return
	}

	wh, err := svix.NewWebhook(h.secret)
	if err != nil {
		h.logger.Error("clerk webhook init failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "webhook not configured"})
		return
	}
	if err := wh.Verify(body, c.Request.Header); err != nil {
		h.logger.Warn("clerk webhook signature failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "signature verification failed"})
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid event payload"})
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		var data clerkUserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user payload"})
			return
		}
		user := models.User{
			ID:       data.ID,
			Name:     strings.TrimSpace(data.FirstName + " " + data.LastName),
			ImageURL: data.ImageURL,
		}
		if len(data.EmailAddresses) > 0 {
			user.Email = data.EmailAddresses[0].EmailAddress
		}
		if err := h.store.SyncUser(c.Request.Context(), user); err != nil {
			h.logger.Error("clerk user sync failed", zap.String("user_id", data.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to sync user"})
			return
		}
	case "user.deleted":
		var data clerkUserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user payload"})
			return
		}
		if err := h.store.DeleteUser(c.Request.Context(), data.ID); err != nil {
			h.logger.Error("clerk user delete failed", zap.String("user_id", data.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to delete user"})
			return
		}
	default:
		// Intentionally ignore unhandled events.
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
