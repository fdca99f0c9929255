// Package main runs the fest platform HTTP server with the admin live feed
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jadavpur-university-ed-cell/realeweekend5/config"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/admin"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/auth"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/events"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/middleware"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/quiz"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/realtime"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/teams"
	"github.com/jadavpur-university-ed-cell/realeweekend5/internal/worker"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/database"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/queue"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/redis"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/response"
	"github.com/jadavpur-university-ed-cell/realeweekend5/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events and teams
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)
	teamRepo := teams.NewRepository(pool)
	teamHandler := teams.NewHandler(teamRepo, logger)

	// Quizzes
	quizRepo := quiz.NewRepository(pool)
	quizService := quiz.NewService(quizRepo, logger)
	quizHandler := quiz.NewHandler(quizService, quizRepo, hub, logger)

	// Admin dashboard and exports
	jobQueue := queue.NewQueue(rdb.Client, logger)
	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, quizRepo, jobQueue, s3Client, logger)
	exportProcessor := worker.NewExportProcessor(adminRepo, s3Client, jobQueue, logger)

	authValidate := middleware.TokenValidator(func(token string) (uuid.UUID, string, string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return uuid.Nil, "", "", err
		}
		return claims.UserID, claims.Email, claims.Role, nil
	})
	wsValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: event catalog and exam schedule
	router.GET("/events", eventHandler.List)
	router.GET("/exams", quizHandler.ListExams)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(authValidate))
	{
		api.GET("/me", authHandler.Me)
		api.GET("/me/submissions", quizHandler.MySubmissions)

		api.POST("/events/register", eventHandler.Register)

		api.POST("/teams", teamHandler.Create)
		api.POST("/teams/join", teamHandler.Join)
		api.GET("/teams/mine", teamHandler.Mine)

		api.POST("/quizzes/:slug/start", quizHandler.Start)
		api.POST("/quizzes/:slug/submit", quizHandler.Submit)

		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.RequireRole("admin"))
		{
			adminGroup.GET("/submissions", adminHandler.ListSubmissions)
			adminGroup.GET("/teams", teamHandler.ListAll)
			adminGroup.POST("/quizzes", adminHandler.CreateQuiz)
			adminGroup.POST("/exports", adminHandler.CreateExport)
			adminGroup.GET("/exports/:id", adminHandler.GetExport)
		}
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/admin", realtime.ServeWs(hub, logger, wsValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// In-process export worker; the standalone worker binary covers deploys
	// that scale it separately.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go exportProcessor.Run(workerCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
