package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/repository"
	"github.com/cppla/gardennotes/utils"
)

// AnswerService assigns prompts to answerers and stores their answers.
type AnswerService struct {
	cfg     config.AppConfig
	prompts PromptStore
	answers AnswerStore

	// Now is the clock; Pick returns a uniform index in [0, n).
	Now  func() time.Time
	Pick func(n int) int
}

// NewAnswerService creates a service using the real clock and math/rand.
func NewAnswerService(cfg config.AppConfig, prompts PromptStore, answers AnswerStore) *AnswerService {
	return &AnswerService{
		cfg:     cfg,
		prompts: prompts,
		answers: answers,
		Now:     time.Now,
		Pick:    rand.Intn,
	}
}

// Today returns the current day-key.
func (s *AnswerService) Today() string {
	return utils.DateKey(s.Now(), s.cfg.Location())
}

// EnsureAssignment returns answerer's assignment for today, creating one from
// the other user's latest complete prompt set when there is none. The bool
// reports whether this call created it. Not-ready conditions come back as
// ErrNoPrompts, ErrIncompletePrompts or ErrSameDay; ErrExhausted means every
// prompt of that set was already assigned to answerer.
func (s *AnswerService) EnsureAssignment(ctx context.Context, answerer string) (*models.Answer, bool, error) {
	now := s.Now()
	today := utils.DateKey(now, s.cfg.Location())

	record, created, err := s.answers.GetOrCreateForDay(ctx, answerer, today, func() (*models.Answer, error) {
		return s.pickAssignment(ctx, answerer, today, now)
	})
	if errors.Is(err, repository.ErrConflictLost) {
		return nil, false, fmt.Errorf("%w: %v", ErrAssignmentFailed, err)
	}
	if err != nil {
		return nil, false, err
	}
	return record, created, nil
}

func (s *AnswerService) pickAssignment(ctx context.Context, answerer, today string, now time.Time) (*models.Answer, error) {
	owner := s.cfg.OtherUser(answerer)
	if owner == "" || owner == answerer {
		return nil, ErrUserRequired
	}

	sourceDateKey, err := s.prompts.LatestDateKey(ctx, owner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoPrompts
	}
	if err != nil {
		return nil, fmt.Errorf("latest prompt set of %s: %w", owner, err)
	}

	set, err := s.prompts.ListForDay(ctx, owner, sourceDateKey)
	if err != nil {
		return nil, fmt.Errorf("load prompt set %s/%s: %w", owner, sourceDateKey, err)
	}
	if len(set) == 0 {
		return nil, ErrNoPrompts
	}
	if len(set) < s.cfg.PromptCount {
		return nil, ErrIncompletePrompts
	}
	if sourceDateKey == today {
		return nil, ErrSameDay
	}

	used, err := s.answers.UsedIndices(ctx, answerer, sourceDateKey)
	if err != nil {
		return nil, fmt.Errorf("used prompt indices: %w", err)
	}
	taken := make(map[int]struct{}, len(used))
	for _, idx := range used {
		taken[idx] = struct{}{}
	}
	available := make([]models.Prompt, 0, len(set))
	for _, p := range set {
		if _, ok := taken[p.PromptIndex]; !ok {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil, ErrExhausted
	}

	pick := available[s.Pick(len(available))]
	return &models.Answer{
		AnswererName:  answerer,
		PromptOwner:   owner,
		PromptIndex:   pick.PromptIndex,
		SourceDateKey: sourceDateKey,
		DateKey:       today,
		PromptText:    pick.Text,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SaveAnswer stores text on answerer's assignment for today.
func (s *AnswerService) SaveAnswer(ctx context.Context, answerer, text string) error {
	err := s.answers.SaveAnswerText(ctx, answerer, s.Today(), utils.Sanitize(text), s.Now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAssignmentMissing
	}
	return err
}

// Reveal returns every assignment once the reveal day has been reached. Before
// that it returns ok=false and no rows.
func (s *AnswerService) Reveal(ctx context.Context) ([]models.Answer, bool, error) {
	if !s.RevealReached() {
		return nil, false, nil
	}
	rows, err := s.answers.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// RevealReached applies the reveal gate to the service clock.
func (s *AnswerService) RevealReached() bool {
	return RevealReached(s.Now(), s.cfg.Location(), s.cfg.RevealDateKey)
}

// Purge deletes assignments by scope; ScopeUser needs a roster user.
func (s *AnswerService) Purge(ctx context.Context, scope, user string) error {
	switch scope {
	case ScopeToday:
		return s.answers.DeleteDay(ctx, s.Today())
	case ScopeUser:
		if user == "" {
			return ErrUserRequired
		}
		return s.answers.DeleteUser(ctx, user)
	default:
		return s.answers.DeleteAll(ctx)
	}
}
