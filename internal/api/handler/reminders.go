package handler

import (
	"net/http"
	"time"

	"hrdesk/backend/internal/reminder"

	"github.com/gin-gonic/gin"
)

type reminderRequest struct {
	UserID   string    `json:"user_id" binding:"required"`
	RemindAt time.Time `json:"remind_at" binding:"required"`
	Note     string    `json:"note"`
}

func (h *Handler) CreateReminder(c *gin.Context) {
	complaintID, ok := pathID(c)
	if !ok {
		return
	}
	var req reminderRequest
	if !bind(c, &req) {
		return
	}

	created, err := h.Reminders.Create(c.Request.Context(), actorFrom(c).UserID, reminder.Input{
		ComplaintID: complaintID,
		UserID:      req.UserID,
		RemindAt:    req.RemindAt,
		Note:        req.Note,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in reminder.UpdateInput
	if !bind(c, &in) {
		return
	}

	updated, err := h.Reminders.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
