package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/gardennotes/models"
)

// UploadRepository tracks stored attachment files.
type UploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a repository on db.
func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create records an upload.
func (r *UploadRepository) Create(ctx context.Context, f *models.UploadedFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

// Claim attaches user's unclaimed uploads with the given urls to noteID so the
// cleaner keeps them.
func (r *UploadRepository) Claim(ctx context.Context, user string, noteID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.UploadedFile{}).
		Where("user_name = ? AND note_id IS NULL AND url IN ?", user, urls).
		Update("note_id", noteID).Error
}

// ListExpired returns up to limit unclaimed uploads whose ExpireAt is not after now.
func (r *UploadRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.UploadedFile, error) {
	var items []models.UploadedFile
	err := r.db.WithContext(ctx).
		Where("note_id IS NULL AND expire_at <= ?", now).
		Order("expire_at ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// Delete removes the upload row with id.
func (r *UploadRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.UploadedFile{}, id).Error
}
