package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	RollNumber string `json:"rollNumber" binding:"required"`
	Department string `json:"department" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /auth/register. New accounts always get the default
// participant role; admins are promoted out of band.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	exists, err := h.repo.ExistsByEmailOrRoll(c.Request.Context(), req.Email, req.RollNumber)
	if err != nil {
		h.logger.Error("registration lookup failed", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}
	if exists {
		response.BadRequest(c, "user with this email or roll number already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, req.RollNumber, req.Department, hash)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, "failed to log in")
		return
	}
	if user == nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /me: the caller's profile plus registered events.
func (h *Handler) Me(c *gin.Context) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	userID, _ := val.(uuid.UUID)

	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("fetch profile failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch profile")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}

	events, err := h.repo.RegisteredEvents(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("fetch registered events failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to fetch profile")
		return
	}

	response.OK(c, gin.H{
		"user":              user.ToPublic(),
		"events_registered": events,
	})
}
