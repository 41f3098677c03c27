// Package repository holds the gorm-backed stores for notes, prompts, answers
// and uploads.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflictLost is returned by GetOrCreate when the insert hit a unique
	// conflict but the winning row could not be read back.
	ErrConflictLost = errors.New("insert conflicted and no winning row was found")
)

// GetOrCreate reads the row selected by find; when there is none it builds one,
// inserts it ignoring unique conflicts and, if a concurrent writer got there
// first, returns that writer's row instead. The bool reports whether this call
// inserted. build may fail with a domain error, which is returned unchanged.
func GetOrCreate[T any](ctx context.Context, db *gorm.DB, find func(*gorm.DB) *gorm.DB, build func() (*T, error)) (*T, bool, error) {
	var existing T
	err := find(db.WithContext(ctx)).Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	row, err := build()
	if err != nil {
		return nil, false, err
	}

	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return row, true, nil
	}

	var winner T
	if err := find(db.WithContext(ctx)).Take(&winner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrConflictLost
		}
		return nil, false, err
	}
	return &winner, false, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// deleteAll removes every row of model; gorm refuses unscoped deletes otherwise.
func deleteAll(ctx context.Context, db *gorm.DB, model interface{}) error {
	return db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
}
