package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/controllers"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/utils"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Notes   controllers.NoteService
	Prompts controllers.PromptService
	Answers controllers.AnswerService
	Uploads controllers.UploadStore
	// DBReady reports whether a database is configured; nil means always.
	DBReady func() bool
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logs go to their own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Sugar.Warnf("gin logger unavailable, using default recovery: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:              []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "X-Token", "X-Viewer", "Authorization"},
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.Static(controllers.UploadURLPrefix, cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	dbReady := deps.DBReady
	if dbReady == nil {
		dbReady = func() bool { return true }
	}

	noteController := controllers.NewNoteController(cfg, deps.Notes)
	promptController := controllers.NewPromptController(cfg, deps.Prompts)
	answerController := controllers.NewAnswerController(cfg, deps.Answers)
	authController := controllers.NewAuthController(cfg)
	uploadController := controllers.NewUploadController(cfg, deps.Uploads)

	api := r.Group("/api")
	api.OPTIONS("/*path", func(ctx *gin.Context) {
		utils.Success(ctx, nil)
	})
	api.Use(middleware.ResolveViewer(cfg), middleware.RateLimitMiddleware(cfg.RateLimitPerMinute))

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	data := api.Group("")
	data.Use(middleware.RequireDatabase(dbReady, config.DatabaseURLHint), middleware.RequireSecret(cfg.APISecret))

	data.GET("/notes", noteController.ListNotes)
	data.POST("/notes", noteController.CreateNote)
	data.DELETE("/notes", noteController.DeleteNotes)

	data.GET("/prompts", promptController.GetPrompts)
	data.POST("/prompts", promptController.SavePrompts)
	data.DELETE("/prompts", promptController.DeletePrompts)

	data.GET("/prompt-answers", answerController.GetAnswers)
	data.POST("/prompt-answers", answerController.SaveAnswer)
	data.DELETE("/prompt-answers", answerController.DeleteAnswers)

	data.POST("/uploads", middleware.AuthRequired(), uploadController.UploadAttachment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "not-found")
	})

	return r
}
