package teams

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/events"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
)

// CreateRequest is the body for POST /teams.
type CreateRequest struct {
	TeamName  string `json:"teamName" binding:"required"`
	EventName string `json:"eventName" binding:"required"`
}

// JoinRequest is the body for POST /teams/join.
type JoinRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
}

// Handler handles team HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a teams handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /teams. The creator becomes leader and first member.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !events.IsValid(req.EventName) {
		response.BadRequest(c, "unknown event")
		return
	}
	if !events.IsTeamEvent(req.EventName) {
		response.BadRequest(c, "not a team event")
		return
	}

	code, err := generateTeamCode()
	if err != nil {
		response.Internal(c, "failed to generate team code")
		return
	}
	team := &models.Team{
		Name:      req.TeamName,
		TeamCode:  code,
		EventName: req.EventName,
		LeaderID:  userID,
	}
	if err := h.repo.Create(c.Request.Context(), team); err != nil {
		if errors.Is(err, ErrAlreadyInEvent) {
			response.BadRequest(c, ErrAlreadyInEvent.Error())
			return
		}
		h.logger.Error("create team failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create team")
		return
	}

	response.Created(c, gin.H{
		"message":   "team created successfully",
		"team_id":   team.ID,
		"team_code": team.TeamCode,
	})
}

// Join handles POST /teams/join.
func (h *Handler) Join(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	team, err := h.repo.Join(c.Request.Context(), strings.ToUpper(strings.TrimSpace(req.JoinCode)), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTeamNotFound):
			response.NotFound(c, ErrTeamNotFound.Error())
		case errors.Is(err, ErrTeamFull):
			response.BadRequest(c, ErrTeamFull.Error())
		case errors.Is(err, ErrAlreadyInEvent):
			response.BadRequest(c, ErrAlreadyInEvent.Error())
		default:
			h.logger.Error("join team failed", zap.Error(err), zap.String("user_id", userID.String()))
			response.Internal(c, "failed to join team")
		}
		return
	}

	response.OK(c, gin.H{
		"message":   "joined team successfully",
		"team_id":   team.ID,
		"team_name": team.Name,
	})
}

// Mine handles GET /teams/mine. A user without a team gets team: null.
func (h *Handler) Mine(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	team, err := h.repo.TeamOf(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("fetch team failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch team")
		return
	}
	response.OK(c, gin.H{"team": team})
}

// ListAll handles GET /admin/teams.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list teams failed", zap.Error(err))
		response.Internal(c, "failed to list teams")
		return
	}
	response.OK(c, list)
}

// generateTeamCode returns a short shareable code like TEAM-A1B2.
func generateTeamCode() (string, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "TEAM-" + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

func contextUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
