package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/gardennotes/models"
)

// AnswerRepository persists answer assignments.
type AnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a repository on db.
func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// FindForDay returns the assignment of answerer on dateKey or ErrNotFound.
func (r *AnswerRepository) FindForDay(ctx context.Context, answerer, dateKey string) (*models.Answer, error) {
	var a models.Answer
	if err := r.db.WithContext(ctx).Where("answerer_name = ? AND date_key = ?", answerer, dateKey).Take(&a).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// GetOrCreateForDay returns the assignment of answerer on dateKey, creating it
// from build when absent. Races are settled by the (answerer, date) unique index.
func (r *AnswerRepository) GetOrCreateForDay(ctx context.Context, answerer, dateKey string, build func() (*models.Answer, error)) (*models.Answer, bool, error) {
	find := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("answerer_name = ? AND date_key = ?", answerer, dateKey)
	}
	return GetOrCreate(ctx, r.db, find, build)
}

// UsedIndices lists prompt indices already assigned to answerer from sourceDateKey.
func (r *AnswerRepository) UsedIndices(ctx context.Context, answerer, sourceDateKey string) ([]int, error) {
	var indices []int
	err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("answerer_name = ? AND source_date_key = ?", answerer, sourceDateKey).
		Pluck("prompt_index", &indices).Error
	return indices, err
}

// SaveAnswerText stores text on the answerer's assignment for dateKey.
// It returns ErrNotFound when there is no assignment.
func (r *AnswerRepository) SaveAnswerText(ctx context.Context, answerer, dateKey, text string, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).
		Where("answerer_name = ? AND date_key = ?", answerer, dateKey).
		Updates(map[string]interface{}{"answer_text": text, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every assignment ordered by day then answerer.
func (r *AnswerRepository) ListAll(ctx context.Context) ([]models.Answer, error) {
	var rows []models.Answer
	err := r.db.WithContext(ctx).Order("date_key ASC").Order("answerer_name ASC").Find(&rows).Error
	return rows, err
}

// DeleteDay removes assignments made on dateKey.
func (r *AnswerRepository) DeleteDay(ctx context.Context, dateKey string) error {
	return r.db.WithContext(ctx).Where("date_key = ?", dateKey).Delete(&models.Answer{}).Error
}

// DeleteUser removes every assignment of answerer.
func (r *AnswerRepository) DeleteUser(ctx context.Context, answerer string) error {
	return r.db.WithContext(ctx).Where("answerer_name = ?", answerer).Delete(&models.Answer{}).Error
}

// DeleteAll empties the table.
func (r *AnswerRepository) DeleteAll(ctx context.Context) error {
	return deleteAll(ctx, r.db, &models.Answer{})
}
