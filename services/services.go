// Package services holds the journal rules: prompt assignment, the reveal
// gate, prompt-set editing and the daily note guard.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/cppla/gardennotes/models"
)

var (
	ErrUserRequired      = errors.New("user-required")
	ErrNoPrompts         = errors.New("no-prompts")
	ErrIncompletePrompts = errors.New("incomplete-prompts")
	ErrSameDay           = errors.New("same-day")
	ErrExhausted         = errors.New("exhausted")
	ErrAssignmentFailed  = errors.New("assignment-failed")
	ErrAssignmentMissing = errors.New("assignment-missing")
	ErrPromptsLocked     = errors.New("prompts-locked")
	ErrDailyLimit        = errors.New("daily-limit-reached")
)

// NotReadyReason reports the reason code when err means the other user's
// prompts cannot be assigned yet.
func NotReadyReason(err error) (string, bool) {
	for _, e := range []error{ErrNoPrompts, ErrIncompletePrompts, ErrSameDay} {
		if errors.Is(err, e) {
			return e.Error(), true
		}
	}
	return "", false
}

// Purge scopes accepted by the DELETE endpoints.
const (
	ScopeToday = "today"
	ScopeUser  = "user"
	ScopeAll   = "all"
)

// PromptStore persists prompt sets.
type PromptStore interface {
	LatestDateKey(ctx context.Context, owner string) (string, error)
	ListForDay(ctx context.Context, owner, dateKey string) ([]models.Prompt, error)
	UpsertSet(ctx context.Context, owner, dateKey string, prompts []models.Prompt, now time.Time) ([]models.Prompt, error)
	DeleteDay(ctx context.Context, dateKey string) error
	DeleteUser(ctx context.Context, owner string) error
	DeleteAll(ctx context.Context) error
}

// AnswerStore persists assignments and answers.
type AnswerStore interface {
	FindForDay(ctx context.Context, answerer, dateKey string) (*models.Answer, error)
	GetOrCreateForDay(ctx context.Context, answerer, dateKey string, build func() (*models.Answer, error)) (*models.Answer, bool, error)
	UsedIndices(ctx context.Context, answerer, sourceDateKey string) ([]int, error)
	SaveAnswerText(ctx context.Context, answerer, dateKey, text string, now time.Time) error
	ListAll(ctx context.Context) ([]models.Answer, error)
	DeleteDay(ctx context.Context, dateKey string) error
	DeleteUser(ctx context.Context, answerer string) error
	DeleteAll(ctx context.Context) error
}

// NoteStore persists notes.
type NoteStore interface {
	List(ctx context.Context) ([]models.Note, error)
	CountForDay(ctx context.Context, user, dateKey string) (int64, error)
	Create(ctx context.Context, note *models.Note) error
	DeleteDay(ctx context.Context, dateKey string) error
	DeleteAll(ctx context.Context) error
}

// UploadClaimer marks uploads as belonging to a note.
type UploadClaimer interface {
	Claim(ctx context.Context, user string, noteID uint, urls []string) error
}
