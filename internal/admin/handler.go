package admin

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/models"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/quiz"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/queue"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/storage"
)

// QuestionRequest is one question in a quiz creation request.
type QuestionRequest struct {
	ID            string   `json:"id" binding:"required"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

// CreateQuizRequest is the body for POST /admin/quizzes.
type CreateQuizRequest struct {
	Slug            string            `json:"slug" binding:"required"`
	Title           string            `json:"title" binding:"required"`
	LiveFrom        time.Time         `json:"liveFrom" binding:"required"`
	LiveUntil       time.Time         `json:"liveUntil" binding:"required"`
	DurationMinutes int               `json:"durationMinutes" binding:"required,gt=0"`
	Questions       []QuestionRequest `json:"questions" binding:"required,min=1"`
}

// CreateExportRequest is the body for POST /admin/exports.
type CreateExportRequest struct {
	QuizSlug string `json:"quizSlug"` // empty = all quizzes
}

// Handler serves the admin dashboard and export endpoints.
type Handler struct {
	repo     *Repository
	quizRepo *quiz.Repository
	jobs     *queue.Queue
	s3       *storage.S3 // nil when the archive store is disabled
	logger   *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(repo *Repository, quizRepo *quiz.Repository, jobs *queue.Queue, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, quizRepo: quizRepo, jobs: jobs, s3: s3, logger: logger}
}

// ListSubmissions handles GET /admin/submissions. Optional ?quiz=slug filter.
func (h *Handler) ListSubmissions(c *gin.Context) {
	list, err := h.repo.ListSubmissions(c.Request.Context(), c.Query("quiz"))
	if err != nil {
		h.logger.Error("list submissions failed", zap.Error(err))
		response.Internal(c, "failed to list submissions")
		return
	}
	response.OK(c, gin.H{
		"submissions": list,
		"count":       len(list),
	})
}

// CreateQuiz handles POST /admin/quizzes.
func (h *Handler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.LiveFrom.Before(req.LiveUntil) {
		response.BadRequest(c, "liveFrom must be before liveUntil")
		return
	}

	questions := make([]models.Question, 0, len(req.Questions))
	seen := make(map[string]bool, len(req.Questions))
	for _, q := range req.Questions {
		if seen[q.ID] {
			response.BadRequest(c, "duplicate question id: "+q.ID)
			return
		}
		seen[q.ID] = true
		questions = append(questions, models.Question{
			ID:            q.ID,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	qz := &models.Quiz{
		Slug:            strings.ToLower(strings.TrimSpace(req.Slug)),
		Title:           req.Title,
		LiveFrom:        req.LiveFrom,
		LiveUntil:       req.LiveUntil,
		DurationMinutes: req.DurationMinutes,
		Questions:       questions,
	}
	if err := h.quizRepo.CreateQuiz(c.Request.Context(), qz); err != nil {
		h.logger.Error("create quiz failed", zap.Error(err), zap.String("slug", qz.Slug))
		response.Internal(c, "failed to create quiz")
		return
	}

	h.logger.Info("quiz created", zap.String("slug", qz.Slug), zap.Int("questions", len(questions)))
	response.Created(c, gin.H{
		"id":   qz.ID,
		"slug": qz.Slug,
	})
}

// CreateExport handles POST /admin/exports: records a pending export and
// hands the heavy lifting to the worker.
func (h *Handler) CreateExport(c *gin.Context) {
	adminID, ok := contextUserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}

	var req CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	exp, err := h.repo.CreateExport(c.Request.Context(), adminID, req.QuizSlug)
	if err != nil {
		h.logger.Error("create export failed", zap.Error(err))
		response.Internal(c, "failed to create export")
		return
	}
	if err := h.jobs.EnqueueExport(c.Request.Context(), queue.ExportPayload{
		ExportID: exp.ID,
		QuizSlug: exp.QuizSlug,
	}); err != nil {
		h.logger.Error("enqueue export failed", zap.Error(err), zap.String("export_id", exp.ID.String()))
		_ = h.repo.FailExport(c.Request.Context(), exp.ID, "enqueue failed")
		response.Internal(c, "failed to enqueue export")
		return
	}

	response.Created(c, exp)
}

// GetExport handles GET /admin/exports/:id. Completed exports with an archive
// key include a short-lived download URL.
func (h *Handler) GetExport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}

	exp, err := h.repo.GetExport(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get export failed", zap.Error(err), zap.String("export_id", id.String()))
		response.Internal(c, "failed to fetch export")
		return
	}
	if exp == nil {
		response.NotFound(c, "export not found")
		return
	}

	body := gin.H{"export": exp}
	if exp.Status == models.ExportCompleted && exp.S3Key != "" && h.s3 != nil {
		url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.ExportsBucket(), exp.S3Key, h.s3.PresignExpire())
		if err != nil {
			h.logger.Warn("presign export url failed", zap.Error(err), zap.String("export_id", id.String()))
		} else {
			body["download_url"] = url
		}
	}
	response.OK(c, body)
}

func contextUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
