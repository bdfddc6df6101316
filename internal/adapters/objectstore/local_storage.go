package objectstore_adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"marketplace-service/internal/contextkeys"
	"marketplace-service/internal/core/port"
)

// LocalStorage хранит объекты на диске под root и раздает их по baseURL.
// Путь объекта в URL совпадает с путем относительно root.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("media root cannot be empty")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("media base url cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStorage{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root - каталог, который REST слой раздает по /media.
func (s *LocalStorage) Root() string {
	return s.root
}

// resolve отвергает пути, выходящие за пределы root.
func (s *LocalStorage) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", fmt.Errorf("object path cannot be empty")
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("object path %q escapes media root", objectPath)
	}
	return full, nil
}

func (s *LocalStorage) Put(ctx context.Context, objectPath string, content io.Reader, contentType string) (string, error) {
	storageLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "LocalStorage",
		"object_path":  objectPath,
		"content_type": contentType,
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	full, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	// Пишем во временный файл и переименовываем, чтобы читатели не видели недописанный объект
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, content)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		storageLogger.Error("Failed to write object", err, nil)
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("failed to store object %s: %w", objectPath, err)
	}

	storageLogger.Debug("Object stored", port.Fields{"bytes": written})
	return s.baseURL + path.Clean("/"+objectPath), nil
}

// DeleteByURL удаляет объект по его публичному URL. Чужие URL и уже удаленные объекты игнорируются.
func (s *LocalStorage) DeleteByURL(ctx context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		contextkeys.LoggerFromContext(ctx).Debug("Skipping delete of foreign url", port.Fields{"url": url})
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", rel, err)
	}
	return nil
}
