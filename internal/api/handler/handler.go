// Package handler exposes the complaint workflow over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/reminder"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Complaints is the workflow surface the handlers call.
type Complaints interface {
	Create(ctx context.Context, actor complaint.Actor, in complaint.CreateInput) (*models.Complaint, error)
	Get(ctx context.Context, id uint) (*models.Complaint, error)
	Find(ctx context.Context, id uint) (*models.Complaint, error)
	Update(ctx context.Context, actor complaint.Actor, id uint, in complaint.UpdateInput) (*models.Complaint, error)
	Delete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) (*models.Complaint, error)
	ForceDelete(ctx context.Context, id uint) error

	Submit(ctx context.Context, actor complaint.Actor, id uint) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, actor complaint.Actor, id uint, status models.Status, notes *string) (*models.Complaint, error)
	Escalate(ctx context.Context, actor complaint.Actor, c *models.Complaint, in complaint.EscalateInput) (*models.Complaint, error)
	Deescalate(ctx context.Context, actor complaint.Actor, c *models.Complaint, in complaint.DeescalateInput) (*models.Complaint, error)
	Resolve(ctx context.Context, actor complaint.Actor, c *models.Complaint, data map[string]any) (*models.Complaint, error)
	UpdateResolution(ctx context.Context, actor complaint.Actor, c *models.Complaint, data map[string]any) (*models.Resolution, error)
	RecordFeedback(ctx context.Context, actor complaint.Actor, c *models.Complaint, data map[string]any) (*models.Complaint, error)
}

// Reminders is the reminder surface the handlers call.
type Reminders interface {
	Create(ctx context.Context, createdBy string, in reminder.Input) (*models.Reminder, error)
	Update(ctx context.Context, id uint, in reminder.UpdateInput) (*models.Reminder, error)
}

// Handler holds the services behind the HTTP routes.
type Handler struct {
	Complaints Complaints
	Reminders  Reminders
	Auth       config.AuthConfig
	Logger     *zap.Logger
}

func NewHandler(complaints Complaints, reminders Reminders, auth config.AuthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		Complaints: complaints,
		Reminders:  reminders,
		Auth:       auth,
		Logger:     logger,
	}
}

// Register mounts every route on r. Everything except /health requires an
// actor token.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", h.Authenticate())

	complaints := api.Group("/complaints")
	complaints.POST("", h.CreateComplaint)
	complaints.GET("/:id", h.GetComplaint)
	complaints.PUT("/:id", h.UpdateComplaint)
	complaints.DELETE("/:id", h.DeleteComplaint)
	complaints.POST("/:id/restore", h.RestoreComplaint)
	complaints.DELETE("/:id/force", h.ForceDeleteComplaint)

	complaints.POST("/:id/submit", h.SubmitComplaint)
	complaints.PUT("/:id/status", h.UpdateStatus)
	complaints.POST("/:id/escalate", h.Escalate)
	complaints.POST("/:id/deescalate", h.Deescalate)
	complaints.POST("/:id/resolve", h.Resolve)
	complaints.PUT("/:id/resolution", h.UpdateResolution)
	complaints.POST("/:id/feedback", h.RecordFeedback)

	complaints.POST("/:id/reminders", h.CreateReminder)
	api.PUT("/reminders/:id", h.UpdateReminder)
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// writeError maps workflow errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case apperror.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperror.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperror.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func bind(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
