package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/gardennotes/models"
)

func TestDateKey(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2025, 10, 12, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-10-12", DateKey(ts, time.UTC))
	assert.Equal(t, "2025-10-13", DateKey(ts, tokyo))
	assert.True(t, "2025-09-30" < "2025-10-01")

	assert.True(t, ValidDateKey("2025-10-13"))
	assert.False(t, ValidDateKey("2025-1-3"))
	assert.False(t, ValidDateKey("2025-13-01"))
	assert.False(t, ValidDateKey(""))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "Isobel", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "Isobel", claims.Username)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "Isobel", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("iso-123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "iso-123"))
	assert.False(t, CheckPassword(hash, "marsh-123"))
	assert.False(t, CheckPassword("", ""))
}

func TestBlacklistInMemory(t *testing.T) {
	SetRedis(nil)

	BlacklistToken("tok-a", time.Now().Add(time.Hour))
	BlacklistToken("tok-b", time.Now().Add(-time.Hour))

	assert.True(t, IsTokenBlacklisted("tok-a"))
	assert.False(t, IsTokenBlacklisted("tok-b"))
	assert.False(t, IsTokenBlacklisted("tok-c"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize(`hello<script>alert(1)</script>`))
	assert.Equal(t, "photo.png", SanitizeName(`<b>photo.png</b>`))
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	in := `Tom & Jerry, x < y, "quoted" <3`
	assert.Equal(t, in, Sanitize(in))
	assert.Equal(t, in, Sanitize(Sanitize(in)))
	assert.Equal(t, "a&b.png", SanitizeName("a&b.png"))
	assert.Equal(t, "it's fine", SanitizeName("<i>it's fine</i>"))
}

func TestCacheWithoutRedis(t *testing.T) {
	SetRedis(nil)

	CacheSetJSON("k", map[string]int{"a": 1}, 0)
	_, ok := CacheGetBytes("k")
	assert.False(t, ok)

	var out map[string]int
	assert.False(t, CacheGetJSON("k", &out))
	InvalidateByPrefix("k")
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	Success(ctx, gin.H{"status": "ready"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"status":"ready"}`, w.Body.String())

	w = httptest.NewRecorder()
	ctx, _ = gin.CreateTestContext(w)
	Error(ctx, http.StatusForbidden, "prompts-locked")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"prompts-locked"}`, w.Body.String())
}

type fakeUploads struct {
	items   []models.UploadedFile
	deleted []uint
	listErr error
}

func (f *fakeUploads) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.UploadedFile, error) {
	return f.items, f.listErr
}

func (f *fakeUploads) Delete(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestSweepUploads(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.png")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o600))

	store := &fakeUploads{items: []models.UploadedFile{
		{ID: 1, FilePath: present},
		{ID: 2, FilePath: filepath.Join(dir, "already-gone.png")},
	}}

	n, err := SweepUploads(context.Background(), store, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uint{1, 2}, store.deleted)
	_, statErr := os.Stat(present)
	assert.True(t, os.IsNotExist(statErr))

	_, err = SweepUploads(context.Background(), &fakeUploads{listErr: errors.New("db down")}, time.Now())
	assert.Error(t, err)
}

func TestServeUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- serveUntil(ctx, srv) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueStrings([]string{"a", "", "b", "a"}))
	assert.Empty(t, UniqueStrings(nil))
}

func TestLoginGuardWithoutRedis(t *testing.T) {
	SetRedis(nil)

	assert.Equal(t, 0, LoginFailRecord("10.0.0.1"))
	LoginBan("10.0.0.1", time.Minute)
	assert.False(t, LoginIsBanned("10.0.0.1"))
}
