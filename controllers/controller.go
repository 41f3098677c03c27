package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/services"
	"github.com/cppla/gardennotes/utils"
)

// Cache key prefixes; writes drop everything under their prefix.
const (
	notesCachePrefix   = "cache:notes:"
	answersCachePrefix = "cache:answers:"
	notesListCacheKey  = notesCachePrefix + "list"
	revealCacheKey     = answersCachePrefix + "reveal"
)

// NoteService is what the notes endpoints need.
type NoteService interface {
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, in services.NoteInput) (*models.Note, error)
	Purge(ctx context.Context, scope string) error
}

// PromptService is what the prompts endpoints need.
type PromptService interface {
	Get(ctx context.Context, viewer, owner, dateKey string) (services.PromptView, error)
	SaveToday(ctx context.Context, owner, dateKey string, entries []services.PromptInput) ([]models.Prompt, string, error)
	Purge(ctx context.Context, scope, user string) error
}

// AnswerService is what the prompt-answers endpoints need.
type AnswerService interface {
	EnsureAssignment(ctx context.Context, answerer string) (*models.Answer, bool, error)
	SaveAnswer(ctx context.Context, answerer, text string) error
	RevealReached() bool
	Reveal(ctx context.Context) ([]models.Answer, bool, error)
	Purge(ctx context.Context, scope, user string) error
}

// UploadStore records stored attachment files.
type UploadStore interface {
	Create(ctx context.Context, f *models.UploadedFile) error
}

// respondError maps service errors to status and error code.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserRequired):
		utils.Error(ctx, http.StatusBadRequest, "user-required")
	case errors.Is(err, services.ErrDailyLimit):
		utils.Error(ctx, http.StatusBadRequest, "daily-limit-reached")
	case errors.Is(err, services.ErrPromptsLocked):
		utils.Error(ctx, http.StatusForbidden, "prompts-locked")
	case errors.Is(err, services.ErrAssignmentMissing):
		utils.Error(ctx, http.StatusNotFound, "assignment-missing")
	case errors.Is(err, services.ErrAssignmentFailed):
		utils.Sugar.Errorw("assignment failed", "path", ctx.FullPath(), "err", err)
		utils.Error(ctx, http.StatusInternalServerError, "assignment-failed")
	default:
		utils.Sugar.Errorw("request failed", "method", ctx.Request.Method, "path", ctx.FullPath(), "err", err)
		utils.Error(ctx, http.StatusInternalServerError, "internal-error")
	}
}

func scopeParam(ctx *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(ctx.DefaultQuery("scope", services.ScopeAll)))
}
