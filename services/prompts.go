package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/repository"
	"github.com/cppla/gardennotes/utils"
)

// PromptInput is one submitted prompt. Index outside 1..PromptCount is ignored.
type PromptInput struct {
	Index int
	Text  string
}

// PromptView is what an owner sees of a prompt set.
type PromptView struct {
	Prompts  []models.Prompt
	DateKey  string
	Editable bool
	HasAny   bool
}

// PromptService manages the prompt sets users write for each other.
type PromptService struct {
	cfg   config.AppConfig
	store PromptStore

	Now func() time.Time
}

// NewPromptService creates a service on store.
func NewPromptService(cfg config.AppConfig, store PromptStore) *PromptService {
	return &PromptService{cfg: cfg, store: store, Now: time.Now}
}

// Today returns the current day-key.
func (s *PromptService) Today() string {
	return utils.DateKey(s.Now(), s.cfg.Location())
}

// Get returns owner's set for dateKey as seen by viewer. An empty dateKey
// means owner's latest day, or today when owner has none. Prompt text is only
// included while the set is editable: it is today's set and viewer owns it.
func (s *PromptService) Get(ctx context.Context, viewer, owner, dateKey string) (PromptView, error) {
	today := s.Today()
	dateKey = strings.TrimSpace(dateKey)
	if dateKey == "" {
		latest, err := s.store.LatestDateKey(ctx, owner)
		switch {
		case err == nil:
			dateKey = latest
		case errors.Is(err, repository.ErrNotFound):
			dateKey = today
		default:
			return PromptView{}, err
		}
	}

	rows, err := s.store.ListForDay(ctx, owner, dateKey)
	if err != nil {
		return PromptView{}, err
	}

	editable := dateKey == today && viewer == owner
	view := PromptView{
		Prompts:  []models.Prompt{},
		DateKey:  dateKey,
		Editable: editable,
		HasAny:   len(rows) > 0,
	}
	if editable && len(rows) > 0 {
		view.Prompts = rows
	}
	return view, nil
}

// SaveToday replaces owner's set for today with entries. Missing indices are
// stored as empty text so the set is always complete. A dateKey other than
// today fails with ErrPromptsLocked.
func (s *PromptService) SaveToday(ctx context.Context, owner, dateKey string, entries []PromptInput) ([]models.Prompt, string, error) {
	today := s.Today()
	if target := strings.TrimSpace(dateKey); target != "" && target != today {
		return nil, today, ErrPromptsLocked
	}

	texts := make(map[int]string, s.cfg.PromptCount)
	for _, e := range entries {
		if e.Index < 1 || e.Index > s.cfg.PromptCount {
			continue
		}
		texts[e.Index] = utils.Sanitize(e.Text)
	}
	normalized := make([]models.Prompt, 0, s.cfg.PromptCount)
	for i := 1; i <= s.cfg.PromptCount; i++ {
		normalized = append(normalized, models.Prompt{PromptIndex: i, Text: texts[i]})
	}

	saved, err := s.store.UpsertSet(ctx, owner, today, normalized, s.Now())
	if err != nil {
		return nil, today, err
	}
	return saved, today, nil
}

// Purge deletes prompts by scope; ScopeUser needs a roster user.
func (s *PromptService) Purge(ctx context.Context, scope, user string) error {
	switch scope {
	case ScopeToday:
		return s.store.DeleteDay(ctx, s.Today())
	case ScopeUser:
		if user == "" {
			return ErrUserRequired
		}
		return s.store.DeleteUser(ctx, user)
	default:
		return s.store.DeleteAll(ctx)
	}
}
