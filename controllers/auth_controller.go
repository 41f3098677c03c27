package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/utils"
)

// AuthController handles roster sign-in sessions.
type AuthController struct {
	cfg config.AppConfig
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(cfg config.AppConfig) *AuthController {
	return &AuthController{cfg: cfg}
}

// Login verifies a roster password and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		User     string `json:"user" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid-json")
		return
	}

	ip := ctx.ClientIP()
	if utils.LoginIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, "rate-limited")
		return
	}

	account, ok := a.cfg.FindUser(a.cfg.SanitizeUser(req.User))
	if !ok || !utils.CheckPassword(account.PasswordHash, req.Password) {
		if n := utils.LoginFailRecord(ip); a.cfg.LoginMaxFailures > 0 && n >= a.cfg.LoginMaxFailures {
			utils.LoginBan(ip, time.Duration(a.cfg.LoginBanMinutes)*time.Minute)
			utils.Sugar.Warnw("login banned", "ip", ip, "failures", n)
		}
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	ttl := time.Duration(a.cfg.JWTTTLHours) * time.Hour
	token, err := utils.GenerateToken(a.cfg.JWTSecret, account.Name, ttl)
	if err != nil {
		respondError(ctx, err)
		return
	}

	utils.Sugar.Infow("login", "user", account.Name, "ip", ip)
	utils.Success(ctx, gin.H{
		"token":     token,
		"user":      account.Name,
		"expiresAt": time.Now().Add(ttl).UnixMilli(),
	})
}

// Logout invalidates the session token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	expiresAt := time.Now().Add(time.Duration(a.cfg.JWTTTLHours) * time.Hour)
	if claims, err := utils.ParseToken(a.cfg.JWTSecret, token); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, nil)
}

// Me returns the current viewer and their partner.
func (a *AuthController) Me(ctx *gin.Context) {
	viewer := middleware.Viewer(ctx)
	utils.Success(ctx, gin.H{
		"user":    viewer,
		"partner": a.cfg.OtherUser(viewer),
	})
}
