package services

import (
	"context"
	"strings"
	"time"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/utils"
)

// NoteInput is a note submission. Zero Timestamp means now; empty DateKey is
// derived from Timestamp.
type NoteInput struct {
	User        string
	Timestamp   int64
	DateKey     string
	Text        string
	Attachments []models.Attachment
}

// NoteService enforces the daily note limit.
type NoteService struct {
	cfg     config.AppConfig
	store   NoteStore
	uploads UploadClaimer

	Now func() time.Time
}

// NewNoteService creates a service on store. uploads may be nil.
func NewNoteService(cfg config.AppConfig, store NoteStore, uploads UploadClaimer) *NoteService {
	return &NoteService{cfg: cfg, store: store, uploads: uploads, Now: time.Now}
}

// List returns every note, newest first.
func (s *NoteService) List(ctx context.Context) ([]models.Note, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// Create stores a note unless the author already reached the per-day cap.
// The count and insert are not atomic; two simultaneous posts can both pass.
func (s *NoteService) Create(ctx context.Context, in NoteInput) (*models.Note, error) {
	if in.User == "" {
		return nil, ErrUserRequired
	}
	ts := in.Timestamp
	if ts <= 0 {
		ts = s.Now().UnixMilli()
	}
	dateKey := strings.TrimSpace(in.DateKey)
	if !utils.ValidDateKey(dateKey) {
		dateKey = utils.DateKey(time.UnixMilli(ts), s.cfg.Location())
	}

	count, err := s.store.CountForDay(ctx, in.User, dateKey)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.cfg.NotesPerDay) {
		return nil, ErrDailyLimit
	}

	attachments := make([]models.Attachment, 0, len(in.Attachments))
	urls := make([]string, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		a.Name = utils.SanitizeName(a.Name)
		attachments = append(attachments, a)
		urls = append(urls, a.URL)
	}

	note := &models.Note{
		UserName:    in.User,
		Timestamp:   ts,
		DateKey:     dateKey,
		Text:        utils.Sanitize(strings.TrimSpace(in.Text)),
		Attachments: attachments,
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, err
	}

	if urls = utils.UniqueStrings(urls); s.uploads != nil && len(urls) > 0 {
		if err := s.uploads.Claim(ctx, in.User, note.ID, urls); err != nil {
			utils.Sugar.Warnf("claim uploads for note %d failed: %v", note.ID, err)
		}
	}
	return note, nil
}

// Purge deletes today's notes or all notes.
func (s *NoteService) Purge(ctx context.Context, scope string) error {
	if scope == ScopeToday {
		return s.store.DeleteDay(ctx, utils.DateKey(s.Now(), s.cfg.Location()))
	}
	return s.store.DeleteAll(ctx)
}
