package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/services"
	"github.com/cppla/gardennotes/utils"
)

const revealCacheTTL = time.Minute

// AnswerController serves daily assignments, answers and the reveal.
type AnswerController struct {
	cfg     config.AppConfig
	answers AnswerService
}

// NewAnswerController creates a new AnswerController instance.
func NewAnswerController(cfg config.AppConfig, answers AnswerService) *AnswerController {
	return &AnswerController{cfg: cfg, answers: answers}
}

// GetAnswers returns today's assignment for user, or every answer with mode=reveal.
func (a *AnswerController) GetAnswers(ctx *gin.Context) {
	user := a.cfg.SanitizeUser(ctx.Query("user"))
	viewer := middleware.Viewer(ctx)

	if strings.EqualFold(ctx.Query("mode"), "reveal") {
		if viewer == "" {
			utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user == "" {
			utils.Error(ctx, http.StatusBadRequest, "user-required")
			return
		}
		a.reveal(ctx)
		return
	}

	if user == "" {
		utils.Error(ctx, http.StatusBadRequest, "user-required")
		return
	}
	if viewer != user {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	record, created, err := a.answers.EnsureAssignment(ctx.Request.Context(), user)
	if reason, ok := services.NotReadyReason(err); ok {
		utils.Success(ctx, gin.H{"status": "not-ready", "reason": reason})
		return
	}
	if errors.Is(err, services.ErrExhausted) {
		utils.Success(ctx, gin.H{"status": "exhausted"})
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	if created {
		utils.InvalidateByPrefix(answersCachePrefix)
	}

	utils.Success(ctx, gin.H{
		"status": "ready",
		"prompt": gin.H{
			"index":         record.PromptIndex,
			"owner":         record.PromptOwner,
			"text":          record.PromptText,
			"sourceDateKey": record.SourceDateKey,
		},
		"answer": gin.H{
			"text":      record.AnswerText,
			"updatedAt": record.UpdatedAt,
		},
		"dateKey": record.DateKey,
	})
}

func (a *AnswerController) reveal(ctx *gin.Context) {
	if !a.answers.RevealReached() {
		utils.Success(ctx, gin.H{"status": "not-ready", "reason": "before-reveal"})
		return
	}
	var cached []models.Answer
	if utils.CacheGetJSON(revealCacheKey, &cached) {
		utils.Success(ctx, gin.H{"status": "reveal", "answers": cached})
		return
	}

	rows, ok, err := a.answers.Reveal(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !ok {
		utils.Success(ctx, gin.H{"status": "not-ready", "reason": "before-reveal"})
		return
	}

	utils.CacheSetJSON(revealCacheKey, rows, revealCacheTTL)
	utils.Success(ctx, gin.H{"status": "reveal", "answers": rows})
}

// SaveAnswer stores the viewer's answer to today's assignment.
func (a *AnswerController) SaveAnswer(ctx *gin.Context) {
	var req struct {
		User       string `json:"user"`
		AnswerText string `json:"answerText"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid-json")
		return
	}

	user := a.cfg.SanitizeUser(req.User)
	if user == "" {
		utils.Error(ctx, http.StatusBadRequest, "user-required")
		return
	}
	if middleware.Viewer(ctx) != user {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := a.answers.SaveAnswer(ctx.Request.Context(), user, req.AnswerText); err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(answersCachePrefix)
	utils.Success(ctx, nil)
}

// DeleteAnswers purges assignments by scope=today|user|all.
func (a *AnswerController) DeleteAnswers(ctx *gin.Context) {
	scope := scopeParam(ctx)
	user := ""
	if scope == services.ScopeUser {
		user = a.cfg.SanitizeUser(ctx.Query("user"))
	}
	if err := a.answers.Purge(ctx.Request.Context(), scope, user); err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(answersCachePrefix)
	utils.Success(ctx, nil)
}
