package objectstore_adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/media/")
	require.NoError(t, err)
	return s
}

func TestNewLocalStorageValidation(t *testing.T) {
	_, err := NewLocalStorage("", "http://x")
	assert.Error(t, err)
	_, err = NewLocalStorage(t.TempDir(), "")
	assert.Error(t, err)
}

func TestLocalStoragePutAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	url, err := s.Put(ctx, "property-images/p1/1700000000000-abcd1234.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/property-images/p1/1700000000000-abcd1234.jpg", url)

	data, err := os.ReadFile(filepath.Join(s.Root(), "property-images", "p1", "1700000000000-abcd1234.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	entries, err := os.ReadDir(filepath.Join(s.Root(), "property-images", "p1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not remain")

	require.NoError(t, s.DeleteByURL(ctx, url))
	_, err = os.Stat(filepath.Join(s.Root(), "property-images", "p1", "1700000000000-abcd1234.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Повторное удаление не ошибка
	assert.NoError(t, s.DeleteByURL(ctx, url))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), "text/plain")
	require.NoError(t, err, "cleaned path stays inside root")
	assert.Equal(t, "http://localhost:8080/media/etc/passwd", url)

	_, err = s.Put(context.Background(), "", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
}

func TestLocalStorageIgnoresForeignURL(t *testing.T) {
	s := newTestStorage(t)
	assert.NoError(t, s.DeleteByURL(context.Background(), "https://cdn.example.com/a.jpg"))
}

func TestLocalStorageHonoursCancelledContext(t *testing.T) {
	s := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Put(ctx, "a.jpg", strings.NewReader("x"), "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}
