package handler

import (
	"net/http"

	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status models.Status `json:"status" binding:"required"`
	Notes  *string       `json:"notes"`
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var in complaint.CreateInput
	if !bind(c, &in) {
		return
	}

	created, err := h.Complaints.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.Complaints.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) UpdateComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in complaint.UpdateInput
	if !bind(c, &in) {
		return
	}

	updated, err := h.Complaints.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Complaints.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RestoreComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	restored, err := h.Complaints.Restore(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, restored)
}

func (h *Handler) ForceDeleteComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Complaints.ForceDelete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SubmitComplaint(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	submitted, err := h.Complaints.Submit(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submitted)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !bind(c, &req) {
		return
	}

	updated, err := h.Complaints.UpdateStatus(c.Request.Context(), actorFrom(c), id, req.Status, req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Escalate(c *gin.Context) {
	target, ok := h.loadComplaint(c)
	if !ok {
		return
	}
	var in complaint.EscalateInput
	if !bind(c, &in) {
		return
	}

	escalated, err := h.Complaints.Escalate(c.Request.Context(), actorFrom(c), target, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, escalated)
}

func (h *Handler) Deescalate(c *gin.Context) {
	target, ok := h.loadComplaint(c)
	if !ok {
		return
	}
	var in complaint.DeescalateInput
	if !bind(c, &in) {
		return
	}

	updated, err := h.Complaints.Deescalate(c.Request.Context(), actorFrom(c), target, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Resolve(c *gin.Context) {
	target, ok := h.loadComplaint(c)
	if !ok {
		return
	}
	var data map[string]any
	if !bind(c, &data) {
		return
	}

	resolved, err := h.Complaints.Resolve(c.Request.Context(), actorFrom(c), target, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}

func (h *Handler) UpdateResolution(c *gin.Context) {
	target, ok := h.loadComplaint(c)
	if !ok {
		return
	}
	var data map[string]any
	if !bind(c, &data) {
		return
	}

	resolution, err := h.Complaints.UpdateResolution(c.Request.Context(), actorFrom(c), target, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}

func (h *Handler) RecordFeedback(c *gin.Context) {
	target, ok := h.loadComplaint(c)
	if !ok {
		return
	}
	var data map[string]any
	if !bind(c, &data) {
		return
	}

	updated, err := h.Complaints.RecordFeedback(c.Request.Context(), actorFrom(c), target, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// loadComplaint resolves the :id parameter for the operations that act on a
// loaded complaint.
func (h *Handler) loadComplaint(c *gin.Context) (*models.Complaint, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	found, err := h.Complaints.Find(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return found, true
}
