package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/gardennotes/models"
)

// PromptRepository persists prompt sets.
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a repository on db.
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// LatestDateKey returns the most recent day owner wrote prompts on, or
// ErrNotFound when owner never did.
func (r *PromptRepository) LatestDateKey(ctx context.Context, owner string) (string, error) {
	var p models.Prompt
	err := r.db.WithContext(ctx).Select("date_key").
		Where("user_name = ?", owner).
		Order("date_key DESC").
		Take(&p).Error
	if err != nil {
		return "", notFound(err)
	}
	return p.DateKey, nil
}

// ListForDay returns owner's prompts for dateKey ordered by index.
func (r *PromptRepository) ListForDay(ctx context.Context, owner, dateKey string) ([]models.Prompt, error) {
	var rows []models.Prompt
	err := r.db.WithContext(ctx).
		Where("user_name = ? AND date_key = ?", owner, dateKey).
		Order("prompt_index ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertSet writes prompts for owner on dateKey, replacing the text of indices
// that already exist, and returns the stored set.
func (r *PromptRepository) UpsertSet(ctx context.Context, owner, dateKey string, prompts []models.Prompt, now time.Time) ([]models.Prompt, error) {
	rows := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		rows = append(rows, models.Prompt{
			UserName:    owner,
			PromptIndex: p.PromptIndex,
			Text:        p.Text,
			DateKey:     dateKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_name"}, {Name: "date_key"}, {Name: "prompt_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return r.ListForDay(ctx, owner, dateKey)
}

// DeleteDay removes every prompt written on dateKey.
func (r *PromptRepository) DeleteDay(ctx context.Context, dateKey string) error {
	return r.db.WithContext(ctx).Where("date_key = ?", dateKey).Delete(&models.Prompt{}).Error
}

// DeleteUser removes every prompt owned by owner.
func (r *PromptRepository) DeleteUser(ctx context.Context, owner string) error {
	return r.db.WithContext(ctx).Where("user_name = ?", owner).Delete(&models.Prompt{}).Error
}

// DeleteAll empties the table.
func (r *PromptRepository) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &models.Prompt{})
}
