package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/gardennotes/models"
)

// NoteRepository persists journal notes.
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a repository on db.
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns every note, newest first.
func (r *NoteRepository) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Find(&notes).Error
	return notes, err
}

// CountForDay counts user's notes on dateKey.
func (r *NoteRepository) CountForDay(ctx context.Context, user, dateKey string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Note{}).
		Where("user_name = ? AND date_key = ?", user, dateKey).
		Count(&count).Error
	return count, err
}

// Create inserts note and fills its ID.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Create(note).Error
}

// DeleteDay removes every note on dateKey.
func (r *NoteRepository) DeleteDay(ctx context.Context, dateKey string) error {
	return r.db.WithContext(ctx).Where("date_key = ?", dateKey).Delete(&models.Note{}).Error
}

// DeleteAll empties the table.
func (r *NoteRepository) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &models.Note{})
}
