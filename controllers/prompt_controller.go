package controllers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/services"
	"github.com/cppla/gardennotes/utils"
)

// PromptController lets each user write the prompts the other answers.
type PromptController struct {
	cfg     config.AppConfig
	prompts PromptService
}

// NewPromptController creates a new PromptController instance.
func NewPromptController(cfg config.AppConfig, prompts PromptService) *PromptController {
	return &PromptController{cfg: cfg, prompts: prompts}
}

// GetPrompts returns the viewer's own prompt set.
func (p *PromptController) GetPrompts(ctx *gin.Context) {
	user := p.cfg.SanitizeUser(ctx.Query("user"))
	if user == "" {
		utils.Error(ctx, http.StatusBadRequest, "user-required")
		return
	}
	viewer := middleware.Viewer(ctx)
	if viewer != user {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := p.prompts.Get(ctx.Request.Context(), viewer, user, ctx.Query("dateKey"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"prompts":  view.Prompts,
		"dateKey":  view.DateKey,
		"editable": view.Editable,
		"hasAny":   view.HasAny,
	})
}

// SavePrompts replaces today's prompt set of the viewer.
func (p *PromptController) SavePrompts(ctx *gin.Context) {
	var req struct {
		User    string `json:"user"`
		DateKey string `json:"dateKey"`
		Prompts []struct {
			Index json.RawMessage `json:"index"`
			Text  string          `json:"text"`
		} `json:"prompts"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid-json")
		return
	}

	user := p.cfg.SanitizeUser(req.User)
	if user == "" {
		utils.Error(ctx, http.StatusBadRequest, "user-required")
		return
	}
	if middleware.Viewer(ctx) != user {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries := make([]services.PromptInput, 0, len(req.Prompts))
	for _, e := range req.Prompts {
		idx, ok := parseIndex(e.Index)
		if !ok {
			continue
		}
		entries = append(entries, services.PromptInput{Index: idx, Text: e.Text})
	}

	saved, dateKey, err := p.prompts.SaveToday(ctx.Request.Context(), user, req.DateKey, entries)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"prompts": saved, "dateKey": dateKey})
}

// DeletePrompts purges prompts by scope=today|user|all.
func (p *PromptController) DeletePrompts(ctx *gin.Context) {
	scope := scopeParam(ctx)
	user := ""
	if scope == services.ScopeUser {
		user = p.cfg.SanitizeUser(ctx.Query("user"))
	}
	if err := p.prompts.Purge(ctx.Request.Context(), scope, user); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, nil)
}

// parseIndex accepts a whole number given as a JSON number or numeric string.
func parseIndex(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
