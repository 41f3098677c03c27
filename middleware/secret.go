package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gardennotes/utils"
)

// RequireSecret demands X-Token == secret on POST and DELETE. An empty secret
// disables the check.
func RequireSecret(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if secret == "" {
			ctx.Next()
			return
		}
		switch ctx.Request.Method {
		case http.MethodPost, http.MethodDelete:
			got := ctx.GetHeader("X-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
				ctx.Abort()
				return
			}
		}
		ctx.Next()
	}
}

// RequireDatabase answers 500 missing-database-url while ready reports false.
func RequireDatabase(ready func() bool, hint string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodOptions && !ready() {
			utils.ErrorWithHint(ctx, http.StatusInternalServerError, "missing-database-url", hint)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
