package quiz

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/realtime"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
)

// SubmitRequest is the body for POST /quizzes/:slug/submit.
type SubmitRequest struct {
	Answers       map[string]string `json:"answers"`
	TabSwitches   int               `json:"tabSwitches" binding:"gte=0"`
	AutoSubmitted bool              `json:"autoSubmitted"`
}

// SubmissionFeed receives scored-submission events for the admin live feed.
type SubmissionFeed interface {
	PublishSubmission(ev realtime.SubmissionEvent)
}

// Handler handles quiz HTTP endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	feed    SubmissionFeed
	logger  *zap.Logger
}

// NewHandler creates a quiz handler. feed may be nil when no live feed is wired.
func NewHandler(service *Service, repo *Repository, feed SubmissionFeed, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, feed: feed, logger: logger}
}

// Start handles POST /quizzes/:slug/start.
func (h *Handler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	result, err := h.service.Start(c.Request.Context(), c.Param("slug"), userID, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, result)
}

// Submit handles POST /quizzes/:slug/submit.
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	slug := c.Param("slug")
	now := time.Now()
	score, err := h.service.Submit(c.Request.Context(), slug, userID, req.Answers, req.TabSwitches, now)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.feed != nil {
		h.feed.PublishSubmission(realtime.SubmissionEvent{
			QuizSlug:    slug,
			UserID:      userID,
			Score:       score,
			TabSwitches: req.TabSwitches,
			IsFlagged:   req.TabSwitches >= FlagTabSwitchThreshold,
			SubmittedAt: now,
		})
	}

	response.OK(c, gin.H{"score": score})
}

// ListExams handles GET /exams. Public: schedule metadata only, question
// banks excluded.
func (h *Handler) ListExams(c *gin.Context) {
	list, err := h.repo.ListQuizzes(c.Request.Context())
	if err != nil {
		h.logger.Error("list quizzes failed", zap.Error(err))
		response.Internal(c, "failed to list exams")
		return
	}
	response.OK(c, list)
}

// MySubmissions handles GET /me/submissions.
func (h *Handler) MySubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	list, err := h.repo.AttemptsByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list attempts failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to list submissions")
		return
	}
	response.OK(c, list)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound):
		response.NotFound(c, ErrQuizNotFound.Error())
	case errors.Is(err, ErrPortalNotOpen):
		response.Forbidden(c, ErrPortalNotOpen.Error())
	case errors.Is(err, ErrPortalClosed):
		response.Forbidden(c, ErrPortalClosed.Error())
	case errors.Is(err, ErrAlreadyAttempted):
		response.Conflict(c, ErrAlreadyAttempted.Error())
	case errors.Is(err, ErrAlreadySubmitted):
		response.Conflict(c, ErrAlreadySubmitted.Error())
	case errors.Is(err, ErrNoActiveAttempt):
		response.BadRequest(c, ErrNoActiveAttempt.Error())
	default:
		h.logger.Error("quiz operation failed", zap.Error(err))
		response.Internal(c, "server error")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
