package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/services"
	"github.com/cppla/gardennotes/utils"
)

// NoteController serves the shared note journal.
type NoteController struct {
	cfg   config.AppConfig
	notes NoteService
}

// NewNoteController creates a new NoteController instance.
func NewNoteController(cfg config.AppConfig, notes NoteService) *NoteController {
	return &NoteController{cfg: cfg, notes: notes}
}

// ListNotes returns every note, newest first.
func (n *NoteController) ListNotes(ctx *gin.Context) {
	var cached []models.Note
	if utils.CacheGetJSON(notesListCacheKey, &cached) {
		ctx.JSON(http.StatusOK, gin.H{"notes": cached})
		return
	}

	notes, err := n.notes.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.CacheSetJSON(notesListCacheKey, notes, 0)
	ctx.JSON(http.StatusOK, gin.H{"notes": notes})
}

// CreateNote stores the author's note for the day.
func (n *NoteController) CreateNote(ctx *gin.Context) {
	var req struct {
		User        string              `json:"user"`
		Text        string              `json:"text"`
		Timestamp   int64               `json:"timestamp"`
		DateKey     string              `json:"dateKey"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid-json")
		return
	}

	user := n.cfg.SanitizeUser(req.User)
	if user == "" {
		utils.Error(ctx, http.StatusBadRequest, "user-required")
		return
	}
	if viewer := middleware.Viewer(ctx); viewer != "" && viewer != user {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	note, err := n.notes.Create(ctx.Request.Context(), services.NoteInput{
		User:        user,
		Timestamp:   req.Timestamp,
		DateKey:     req.DateKey,
		Text:        req.Text,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(notesCachePrefix)
	utils.Success(ctx, gin.H{"note": note})
}

// DeleteNotes removes today's notes (scope=today) or all of them.
func (n *NoteController) DeleteNotes(ctx *gin.Context) {
	scope := scopeParam(ctx)
	if scope != services.ScopeToday {
		scope = services.ScopeAll
	}
	if err := n.notes.Purge(ctx.Request.Context(), scope); err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(notesCachePrefix)
	utils.Success(ctx, nil)
}
