package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
)

// RegisterRequest is the body for POST /events/register.
type RegisterRequest struct {
	EventName string `json:"eventName" binding:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /events. Public catalog.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, Catalog)
}

// Register handles POST /events/register for solo events. Team events go
// through team creation or joining instead.
func (h *Handler) Register(c *gin.Context) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	userID, _ := val.(uuid.UUID)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !IsValid(req.EventName) {
		response.BadRequest(c, "unknown event")
		return
	}
	if IsTeamEvent(req.EventName) {
		response.BadRequest(c, "this event is registered via teams")
		return
	}

	created, err := h.repo.Register(c.Request.Context(), userID, req.EventName)
	if err != nil {
		h.logger.Error("event registration failed", zap.Error(err),
			zap.String("user_id", userID.String()), zap.String("event", req.EventName))
		response.Internal(c, "failed to register")
		return
	}
	if !created {
		response.OK(c, gin.H{"message": "already registered"})
		return
	}
	response.OK(c, gin.H{"message": "successfully registered"})
}
