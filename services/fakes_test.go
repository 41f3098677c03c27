package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/repository"
)

type memPrompts struct {
	mu   sync.Mutex
	rows []models.Prompt
}

func (m *memPrompts) addSet(owner, dateKey string, n int) {
	for i := 1; i <= n; i++ {
		m.rows = append(m.rows, models.Prompt{UserName: owner, DateKey: dateKey, PromptIndex: i, Text: owner + " prompt " + string(rune('A'+i-1))})
	}
}

func (m *memPrompts) LatestDateKey(_ context.Context, owner string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := ""
	for _, r := range m.rows {
		if r.UserName == owner && r.DateKey > latest {
			latest = r.DateKey
		}
	}
	if latest == "" {
		return "", repository.ErrNotFound
	}
	return latest, nil
}

func (m *memPrompts) ListForDay(_ context.Context, owner, dateKey string) ([]models.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Prompt
	for _, r := range m.rows {
		if r.UserName == owner && r.DateKey == dateKey {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PromptIndex < out[j].PromptIndex })
	return out, nil
}

func (m *memPrompts) UpsertSet(ctx context.Context, owner, dateKey string, prompts []models.Prompt, now time.Time) ([]models.Prompt, error) {
	m.mu.Lock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if !(r.UserName == owner && r.DateKey == dateKey) {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	for _, p := range prompts {
		p.UserName, p.DateKey, p.UpdatedAt = owner, dateKey, now
		m.rows = append(m.rows, p)
	}
	m.mu.Unlock()
	return m.ListForDay(ctx, owner, dateKey)
}

func (m *memPrompts) filter(keep func(models.Prompt) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	m.rows = kept
}

func (m *memPrompts) DeleteDay(_ context.Context, dateKey string) error {
	m.filter(func(p models.Prompt) bool { return p.DateKey != dateKey })
	return nil
}

func (m *memPrompts) DeleteUser(_ context.Context, owner string) error {
	m.filter(func(p models.Prompt) bool { return p.UserName != owner })
	return nil
}

func (m *memPrompts) DeleteAll(_ context.Context) error {
	m.filter(func(models.Prompt) bool { return false })
	return nil
}

type memAnswers struct {
	mu   sync.Mutex
	rows []models.Answer
	// beforeInsert runs between build and insert to simulate a concurrent writer.
	beforeInsert func()
}

func (m *memAnswers) find(answerer, dateKey string) *models.Answer {
	for i := range m.rows {
		if m.rows[i].AnswererName == answerer && m.rows[i].DateKey == dateKey {
			row := m.rows[i]
			return &row
		}
	}
	return nil
}

func (m *memAnswers) FindForDay(_ context.Context, answerer, dateKey string) (*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row := m.find(answerer, dateKey); row != nil {
		return row, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memAnswers) GetOrCreateForDay(_ context.Context, answerer, dateKey string, build func() (*models.Answer, error)) (*models.Answer, bool, error) {
	m.mu.Lock()
	if row := m.find(answerer, dateKey); row != nil {
		m.mu.Unlock()
		return row, false, nil
	}
	m.mu.Unlock()

	candidate, err := build()
	if err != nil {
		return nil, false, err
	}
	if m.beforeInsert != nil {
		m.beforeInsert()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if row := m.find(answerer, dateKey); row != nil {
		return row, false, nil
	}
	for _, r := range m.rows {
		if r.AnswererName == candidate.AnswererName && r.SourceDateKey == candidate.SourceDateKey && r.PromptIndex == candidate.PromptIndex {
			return nil, false, repository.ErrConflictLost
		}
	}
	m.rows = append(m.rows, *candidate)
	return candidate, true, nil
}

func (m *memAnswers) UsedIndices(_ context.Context, answerer, sourceDateKey string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, r := range m.rows {
		if r.AnswererName == answerer && r.SourceDateKey == sourceDateKey {
			out = append(out, r.PromptIndex)
		}
	}
	return out, nil
}

func (m *memAnswers) SaveAnswerText(_ context.Context, answerer, dateKey, text string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].AnswererName == answerer && m.rows[i].DateKey == dateKey {
			m.rows[i].AnswerText = text
			m.rows[i].UpdatedAt = now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memAnswers) ListAll(_ context.Context) ([]models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Answer(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateKey != out[j].DateKey {
			return out[i].DateKey < out[j].DateKey
		}
		return out[i].AnswererName < out[j].AnswererName
	})
	return out, nil
}

func (m *memAnswers) filter(keep func(models.Answer) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	m.rows = kept
}

func (m *memAnswers) DeleteDay(_ context.Context, dateKey string) error {
	m.filter(func(a models.Answer) bool { return a.DateKey != dateKey })
	return nil
}

func (m *memAnswers) DeleteUser(_ context.Context, answerer string) error {
	m.filter(func(a models.Answer) bool { return a.AnswererName != answerer })
	return nil
}

func (m *memAnswers) DeleteAll(_ context.Context) error {
	m.filter(func(models.Answer) bool { return false })
	return nil
}

type memNotes struct {
	mu     sync.Mutex
	rows   []models.Note
	nextID uint
}

func (m *memNotes) List(_ context.Context) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Note(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (m *memNotes) CountForDay(_ context.Context, user, dateKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.UserName == user && r.DateKey == dateKey {
			n++
		}
	}
	return n, nil
}

func (m *memNotes) Create(_ context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	note.ID = m.nextID
	m.rows = append(m.rows, *note)
	return nil
}

func (m *memNotes) DeleteDay(_ context.Context, dateKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.DateKey != dateKey {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *memNotes) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return nil
}

type claimCall struct {
	user   string
	noteID uint
	urls   []string
}

type memClaims struct {
	calls []claimCall
}

func (m *memClaims) Claim(_ context.Context, user string, noteID uint, urls []string) error {
	m.calls = append(m.calls, claimCall{user: user, noteID: noteID, urls: urls})
	return nil
}
