package app

import (
	"encoding/json"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app/models"
	"github.com/Ankur21bera/edemy-backend/auth"
)

// EducatorHandler serves the educator-facing catalog and dashboard routes.
type EducatorHandler struct {
	store  *Store
	roles  RoleStore
	media  MediaStore
	logger *zap.Logger
}

func NewEducatorHandler(store *Store, roles RoleStore, media MediaStore, logger *zap.Logger) *EducatorHandler {
	return &EducatorHandler{store: store, roles: roles, media: media, logger: logger}
}

// RequireEducator gates routes on the educator role held in the identity
// store's public metadata.
func (h *EducatorHandler) RequireEducator() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
			return
		}

		role, err := h.roles.Role(c.Request.Context(), claims.Subject)
		if err != nil {
			h.logger.Error("role lookup failed", zap.String("user_id", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to verify role"})
			return
		}
		if role != RoleEducator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "unauthorized access"})
			return
		}

		c.Next()
	}
}

// UpdateRole promotes the caller to educator in the identity store.
func (h *EducatorHandler) UpdateRole(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	if err := h.roles.SetEducatorRole(c.Request.Context(), claims.Subject); err != nil {
		h.logger.Error("role update failed", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "You can publish a course now"})
}

// AddCourse persists course metadata, then uploads the thumbnail and
// attaches its URL. An upload failure leaves the course without a
// thumbnail; there is no compensating rollback.
func (h *EducatorHandler) AddCourse(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	raw := c.PostForm("courseData")
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "missing course data"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Please attach a thumbnail"})
		return
	}
	defer file.Close()

	var req models.AddCourseRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "invalid course data"})
		return
	}
	if req.Title == "" || req.Price < 0 || req.Discount < 0 || req.Discount > 100 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "invalid course data"})
		return
	}

	ctx := c.Request.Context()

	course := models.Course{
		ID:         uuid.NewString(),
		EducatorID: claims.Subject,
		Title:      req.Title,
		Price:      decimal.NewFromFloat(req.Price).Round(2),
		Discount:   req.Discount,
	}
	if err := h.store.CreateCourse(ctx, course); err != nil {
		h.logger.Error("course insert failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to create course"})
		return
	}

	key := "thumbnails/" + course.ID + path.Ext(header.Filename)
	url, err := h.media.Upload(ctx, key, file, header.Header.Get("Content-Type"))
	if err != nil {
		// Course metadata is already persisted; it stays thumbnail-less.
		h.logger.Warn("thumbnail upload failed", zap.String("course_id", course.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "thumbnail upload failed"})
		return
	}

	if err := h.store.SetCourseThumbnail(ctx, course.ID, url); err != nil {
		h.logger.Error("thumbnail attach failed", zap.String("course_id", course.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to attach thumbnail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course added"})
}

// GetCourses lists the caller's courses.
func (h *EducatorHandler) GetCourses(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	courses, err := h.store.CoursesByEducator(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("course list failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// Dashboard aggregates course count, completed-purchase earnings and the
// enrollment roster for the caller.
func (h *EducatorHandler) Dashboard(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	ctx := c.Request.Context()

	courses, err := h.store.CoursesByEducator(ctx, claims.Subject)
	if err != nil {
		h.logger.Error("dashboard course list failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load courses"})
		return
	}

	earnings, err := h.store.TotalEarnings(ctx, claims.Subject)
	if err != nil {
		h.logger.Error("dashboard earnings failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load earnings"})
		return
	}

	roster, err := h.store.EnrollmentRoster(ctx, claims.Subject)
	if err != nil {
		h.logger.Error("dashboard roster failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load roster"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "dashboardData": models.DashboardData{
		TotalEarnings:        earnings,
		EnrolledStudentsData: roster,
		TotalCourses:         len(courses),
	}})
}

// EnrolledStudents returns the purchase-derived roster with purchase dates.
func (h *EducatorHandler) EnrolledStudents(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	students, err := h.store.PurchasedStudents(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("enrolled students failed", zap.String("educator_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load enrolled students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "enrolledStudents": students})
}
