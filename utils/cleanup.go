package utils

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/cppla/gardennotes/models"
)

// ExpiredUploads is the storage the upload cleaner works against.
type ExpiredUploads interface {
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.UploadedFile, error)
	Delete(ctx context.Context, id uint) error
}

// StartUploadCleaner periodically removes uploads never attached to a note.
// It stops when ctx is cancelled.
func StartUploadCleaner(ctx context.Context, store ExpiredUploads, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := SweepUploads(ctx, store, time.Now()); err != nil {
					Sugar.Warnf("upload cleaner failed: %v", err)
				} else if n > 0 {
					Sugar.Infof("upload cleaner removed %d files", n)
				}
			}
		}
	}()
}

// SweepUploads deletes one batch of expired unclaimed uploads and returns how
// many rows were removed. Missing files are not an error.
func SweepUploads(ctx context.Context, store ExpiredUploads, now time.Time) (int, error) {
	items, err := store.ListExpired(ctx, now, 100)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, it := range items {
		if it.FilePath != "" {
			if err := os.Remove(it.FilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				Sugar.Warnf("upload cleaner remove file failed path=%s err=%v", it.FilePath, err)
				continue
			}
		}
		if err := store.Delete(ctx, it.ID); err != nil {
			Sugar.Warnf("upload cleaner delete row failed id=%d err=%v", it.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}
