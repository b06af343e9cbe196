package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ankur21bera/edemy-backend/app/models"
	"github.com/Ankur21bera/edemy-backend/auth"
)

// UserHandler serves the learner-facing routes: profile, enrollments,
// lecture progress and ratings.
type UserHandler struct {
	store  *Store
	logger *zap.Logger
}

func NewUserHandler(store *Store, logger *zap.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

func (h *UserHandler) GetUserData(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "User not found"})
			return
		}
		h.logger.Error("user lookup failed", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserHandler) EnrolledCourses(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	courses, err := h.store.EnrolledCourses(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("enrolled courses failed", zap.String("user_id", claims.Subject), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load enrolled courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "enrolledCourses": courses})
}

// UpdateCourseProgress marks a lecture complete. Re-marking an already
// completed lecture is a no-op reported as such.
func (h *UserHandler) UpdateCourseProgress(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	var req models.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "invalid request"})
		return
	}

	inserted, err := h.store.MarkLectureComplete(c.Request.Context(), claims.Subject, req.CourseID, req.LectureID)
	if err != nil {
		h.logger.Error("progress update failed",
			zap.String("user_id", claims.Subject), zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to update progress"})
		return
	}
	if !inserted {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Lecture already completed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Progress updated"})
}

func (h *UserHandler) GetCourseProgress(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	var req models.ProgressGetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "invalid request"})
		return
	}

	lectures, err := h.store.LecturesCompleted(c.Request.Context(), claims.Subject, req.CourseID)
	if err != nil {
		h.logger.Error("progress lookup failed",
			zap.String("user_id", claims.Subject), zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "progressData": models.CourseProgress{
		UserID:           claims.Subject,
		CourseID:         req.CourseID,
		LectureCompleted: lectures,
	}})
}

// AddRating upserts the caller's rating for a course they are enrolled in.
func (h *UserHandler) AddRating(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth context"})
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid details"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid details"})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.store.GetCourse(ctx, req.CourseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "message": "Course not found"})
			return
		}
		h.logger.Error("rating course lookup failed", zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to load course"})
		return
	}

	enrolled, err := h.store.IsEnrolled(ctx, req.CourseID, claims.Subject)
	if err != nil {
		h.logger.Error("rating enrollment check failed",
			zap.String("user_id", claims.Subject), zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to verify enrollment"})
		return
	}
	if !enrolled {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "User has not purchased this course"})
		return
	}

	if err := h.store.UpsertRating(ctx, req.CourseID, claims.Subject, req.Rating); err != nil {
		h.logger.Error("rating upsert failed",
			zap.String("user_id", claims.Subject), zap.String("course_id", req.CourseID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "failed to add rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Rating added"})
}
