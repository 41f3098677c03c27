package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/gardennotes/models"
)

var answerColumns = []string{
	"id", "answerer_name", "prompt_owner", "prompt_index", "source_date_key",
	"date_key", "prompt_text", "answer_text", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestGetOrCreateForDay(t *testing.T) {
	now := time.Date(2025, 10, 2, 9, 0, 0, 0, time.UTC)
	selectToday := q(`SELECT * FROM "answers" WHERE answerer_name = $1 AND date_key = $2`)
	fresh := func() (*models.Answer, error) {
		return &models.Answer{
			AnswererName:  "Marshall",
			PromptOwner:   "Isobel",
			PromptIndex:   4,
			SourceDateKey: "2025-10-01",
			DateKey:       "2025-10-02",
			PromptText:    "What made you laugh?",
			CreatedAt:     now,
			UpdatedAt:     now,
		}, nil
	}

	tests := []struct {
		name        string
		build       func() (*models.Answer, error)
		setupMock   func(sqlmock.Sqlmock)
		wantErr     error
		wantCreated bool
		wantIndex   int
	}{
		{
			name:  "existing row is returned unchanged",
			build: fresh,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).
					WillReturnRows(sqlmock.NewRows(answerColumns).
						AddRow(3, "Marshall", "Isobel", 9, "2025-10-01", "2025-10-02", "old", "", now, now))
			},
			wantIndex: 9,
		},
		{
			name:  "missing row is inserted",
			build: fresh,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).WillReturnRows(sqlmock.NewRows(answerColumns))
				mock.ExpectQuery(`INSERT INTO "answers" .* ON CONFLICT DO NOTHING RETURNING "id"`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
			},
			wantCreated: true,
			wantIndex:   4,
		},
		{
			name:  "lost race returns the winning row",
			build: fresh,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).WillReturnRows(sqlmock.NewRows(answerColumns))
				mock.ExpectQuery(`INSERT INTO "answers"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectQuery(selectToday).
					WillReturnRows(sqlmock.NewRows(answerColumns).
						AddRow(8, "Marshall", "Isobel", 2, "2025-10-01", "2025-10-02", "winner", "", now, now))
			},
			wantIndex: 2,
		},
		{
			name:  "lost race without a readable winner",
			build: fresh,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).WillReturnRows(sqlmock.NewRows(answerColumns))
				mock.ExpectQuery(`INSERT INTO "answers"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectQuery(selectToday).WillReturnRows(sqlmock.NewRows(answerColumns))
			},
			wantErr: ErrConflictLost,
		},
		{
			name: "build error skips the insert",
			build: func() (*models.Answer, error) {
				return nil, errExhaustedForTest
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).WillReturnRows(sqlmock.NewRows(answerColumns))
			},
			wantErr: errExhaustedForTest,
		},
		{
			name:  "lookup failure is returned",
			build: fresh,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectToday).WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewAnswerRepository(db)
			tt.setupMock(mock)

			got, created, err := repo.GetOrCreateForDay(context.Background(), "Marshall", "2025-10-02", tt.build)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
				assert.Equal(t, tt.wantIndex, got.PromptIndex)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

var errExhaustedForTest = errors.New("exhausted")

func TestUsedIndices(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnswerRepository(db)

	mock.ExpectQuery(`SELECT .*prompt_index.* FROM "answers" WHERE answerer_name = \$1 AND source_date_key = \$2`).
		WithArgs("Marshall", "2025-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"prompt_index"}).AddRow(2).AddRow(5))

	got, err := repo.UsedIndices(context.Background(), "Marshall", "2025-10-01")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAnswerText(t *testing.T) {
	now := time.Date(2025, 10, 2, 21, 0, 0, 0, time.UTC)

	t.Run("updates today's row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(q(`UPDATE "answers" SET "answer_text"=$1,"updated_at"=$2 WHERE answerer_name = $3 AND date_key = $4`)).
			WithArgs("dear diary", now, "Isobel", "2025-10-02").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewAnswerRepository(db).SaveAnswerText(context.Background(), "Isobel", "2025-10-02", "dear diary", now)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no assignment", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE "answers"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewAnswerRepository(db).SaveAnswerText(context.Background(), "Isobel", "2025-10-02", "x", now)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListAllAnswersOrdering(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(q(`SELECT * FROM "answers" ORDER BY date_key ASC,answerer_name ASC`)).
		WillReturnRows(sqlmock.NewRows(answerColumns).
			AddRow(1, "Isobel", "Marshall", 1, "2025-10-01", "2025-10-02", "p1", "a1", now, now).
			AddRow(2, "Marshall", "Isobel", 3, "2025-10-01", "2025-10-02", "p2", "a2", now, now))

	rows, err := NewAnswerRepository(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Isobel", rows[0].AnswererName)
	assert.Equal(t, "a2", rows[1].AnswerText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnswerPurges(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAnswerRepository(db)
	ctx := context.Background()

	mock.ExpectExec(q(`DELETE FROM "answers" WHERE date_key = $1`)).WithArgs("2025-10-02").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q(`DELETE FROM "answers" WHERE answerer_name = $1`)).WithArgs("Marshall").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(q(`DELETE FROM "answers"`)).WillReturnResult(sqlmock.NewResult(0, 9))

	require.NoError(t, repo.DeleteDay(ctx, "2025-10-02"))
	require.NoError(t, repo.DeleteUser(ctx, "Marshall"))
	require.NoError(t, repo.DeleteAll(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestDateKey(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`SELECT .*date_key.* FROM "prompts" WHERE user_name = \$1 ORDER BY date_key DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"date_key"}).AddRow("2025-10-01"))

		got, err := NewPromptRepository(db).LatestDateKey(context.Background(), "Isobel")
		require.NoError(t, err)
		assert.Equal(t, "2025-10-01", got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM "prompts" WHERE user_name`).
			WillReturnRows(sqlmock.NewRows([]string{"date_key"}))

		_, err := NewPromptRepository(db).LatestDateKey(context.Background(), "Isobel")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpsertSet(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "prompts" .* ON CONFLICT \("user_name","date_key","prompt_index"\) DO UPDATE SET "text"="excluded"."text","updated_at"="excluded"."updated_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()
	mock.ExpectQuery(q(`SELECT * FROM "prompts" WHERE user_name = $1 AND date_key = $2 ORDER BY prompt_index ASC`)).
		WithArgs("Isobel", "2025-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "prompt_index", "text", "date_key"}).
			AddRow(1, "Isobel", 1, "first", "2025-10-01").
			AddRow(2, "Isobel", 2, "second", "2025-10-01"))

	saved, err := NewPromptRepository(db).UpsertSet(context.Background(), "Isobel", "2025-10-01", []models.Prompt{
		{PromptIndex: 1, Text: "first"},
		{PromptIndex: 2, Text: "second"},
	}, now)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "second", saved[1].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(q(`SELECT count(*) FROM "notes" WHERE user_name = $1 AND date_key = $2`)).
		WithArgs("Isobel", "2025-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q(`SELECT * FROM "notes" ORDER BY "timestamp" DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_name", "timestamp", "date_key", "text", "attachments"}).
			AddRow(2, "Isobel", int64(1759300000000), "2025-10-01", "hello", []byte(`[{"name":"a.png","type":"image/png","size":3,"url":"/static/uploads/a.png"}]`)))

	count, err := repo.CountForDay(ctx, "Isobel", "2025-10-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Len(t, notes[0].Attachments, 1)
	assert.Equal(t, "a.png", notes[0].Attachments[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadClaim(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectExec(`UPDATE "uploaded_files" SET "note_id"=\$1,"updated_at"=\$2 WHERE user_name = \$3 AND note_id IS NULL AND url IN \(\$4,\$5\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Claim(context.Background(), "Isobel", 5, []string{"/a", "/b"}))
	require.NoError(t, repo.Claim(context.Background(), "Isobel", 5, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
