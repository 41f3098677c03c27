package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/utils"
)

const (
	// ContextViewerKey stores the roster name the request acts as.
	ContextViewerKey = "viewer"
	// ContextTokenKey stores the bearer token when the viewer came from a session.
	ContextTokenKey = "token"
)

// ResolveViewer identifies the viewer from a Bearer JWT, falling back to the
// X-Viewer header. Names outside the roster leave the viewer empty. A Bearer
// token that is malformed, revoked or expired is rejected outright.
func ResolveViewer(cfg config.AppConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token, ok := bearerToken(ctx); ok {
			if utils.IsTokenBlacklisted(token) {
				utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
				ctx.Abort()
				return
			}
			claims, err := utils.ParseToken(cfg.JWTSecret, token)
			if err != nil {
				utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
				ctx.Abort()
				return
			}
			if viewer := cfg.SanitizeUser(claims.Username); viewer != "" {
				ctx.Set(ContextViewerKey, viewer)
				ctx.Set(ContextTokenKey, token)
			}
			ctx.Next()
			return
		}

		if viewer := cfg.SanitizeUser(ctx.GetHeader("X-Viewer")); viewer != "" {
			ctx.Set(ContextViewerKey, viewer)
		}
		ctx.Next()
	}
}

// AuthRequired rejects requests without a resolved viewer.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if Viewer(ctx) == "" {
			utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// Viewer returns the resolved viewer or "".
func Viewer(ctx *gin.Context) string {
	return ctx.GetString(ContextViewerKey)
}

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
