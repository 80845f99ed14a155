package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps attachments on the local filesystem. It backs offline mode
// and tests.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a store rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Put writes body to key.
func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress func(int)) (string, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	var head [512]byte
	n, readErr := io.ReadFull(body, head[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		f.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("read body: %w", readErr)
	}
	contentType = sniffContentType(contentType, head[:n])

	src := io.MultiReader(bytes.NewReader(head[:n]), body)
	_, err = io.Copy(f, &ctxReader{ctx: ctx, r: newProgressReader(src, size, onProgress)})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		recordStorage("localPut", "error", start)
		return "", fmt.Errorf("write body: %w", err)
	}

	recordStorage("localPut", "success", start)
	return contentType, nil
}

// Delete removes key.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		recordStorage("localDelete", "error", start)
		return fmt.Errorf("remove file: %w", err)
	}
	recordStorage("localDelete", "success", start)
	return nil
}

// Open returns a reader for key.
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

// ctxReader stops a copy once ctx is canceled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
