package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/middleware"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/utils"
)

// UploadURLPrefix is where stored attachments are served from.
const UploadURLPrefix = "/static/uploads"

// UploadController stores note attachments on local disk.
type UploadController struct {
	cfg     config.AppConfig
	uploads UploadStore
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(cfg config.AppConfig, uploads UploadStore) *UploadController {
	return &UploadController{cfg: cfg, uploads: uploads}
}

// UploadAttachment saves the multipart field "file" and returns the attachment
// a note can reference. It stays unclaimed until a note lists its url.
func (u *UploadController) UploadAttachment(ctx *gin.Context) {
	viewer := middleware.Viewer(ctx)
	if viewer == "" {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "file-required")
		return
	}
	defer file.Close()

	maxSize := int64(u.cfg.UploadMaxMB) << 20
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, "file-too-large")
		return
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		respondError(ctx, fmt.Errorf("detect content type: %w", err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(ctx, fmt.Errorf("rewind upload: %w", err))
		return
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(header.Filename))
	}

	now := time.Now()
	dayDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	baseDir := filepath.Join(u.cfg.UploadDir, dayDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		respondError(ctx, fmt.Errorf("create upload dir: %w", err))
		return
	}

	storedName := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, storedName)
	out, err := os.Create(dstPath)
	if err != nil {
		respondError(ctx, fmt.Errorf("create upload file: %w", err))
		return
	}

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dstPath)
		respondError(ctx, fmt.Errorf("write upload: %w", err))
		return
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, "file-too-large")
		return
	}

	name := utils.SanitizeName(header.Filename)
	if name == "" || name == "." {
		name = storedName
	}
	absPath, _ := filepath.Abs(dstPath)
	record := &models.UploadedFile{
		UserName:    viewer,
		FilePath:    absPath,
		URL:         path.Join(UploadURLPrefix, filepath.ToSlash(dayDir), storedName),
		Name:        name,
		ContentType: mtype.String(),
		Size:        written,
		ExpireAt:    now.Add(time.Duration(u.cfg.UploadTTLMinutes) * time.Minute),
	}
	if err := u.uploads.Create(ctx.Request.Context(), record); err != nil {
		_ = os.Remove(dstPath)
		respondError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"attachment": record.Attachment()})
}
