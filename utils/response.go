package utils

import "github.com/gin-gonic/gin"

// Success writes 200 with {"ok": true} merged into payload.
func Success(ctx *gin.Context, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(200, body)
}

// Error writes {"ok": false, "error": code} with status.
func Error(ctx *gin.Context, status int, code string) {
	ctx.JSON(status, gin.H{"ok": false, "error": code})
}

// ErrorWithHint is Error plus a human readable hint.
func ErrorWithHint(ctx *gin.Context, status int, code, hint string) {
	ctx.JSON(status, gin.H{"ok": false, "error": code, "hint": hint})
}
