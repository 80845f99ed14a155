package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hanjob/resume-api/pkg/metrics"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// ObjectStore keeps attachment bytes.
type ObjectStore interface {
	// Put stores body under key and returns the stored content type.
	// onProgress, when non-nil, receives percentages of size written.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress func(pct int)) (string, error)
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// progressReader reports how much of a known-size body has been read.
type progressReader struct {
	r          io.Reader
	size       int64
	read       int64
	onProgress func(int)
}

func newProgressReader(r io.Reader, size int64, onProgress func(int)) *progressReader {
	return &progressReader{r: r, size: size, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

// Seek lets the S3 client rewind the body for signing and retries.
func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("body is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

func (p *progressReader) report() {
	if p.onProgress == nil || p.size <= 0 {
		return
	}
	pct := int(p.read * 100 / p.size)
	if pct > 100 {
		pct = 100
	}
	p.onProgress(pct)
}

// sniffContentType returns contentType, or a type detected from head when
// the caller did not provide one.
func sniffContentType(contentType string, head []byte) string {
	if contentType != "" {
		return contentType
	}
	return http.DetectContentType(head)
}

func recordStorage(operation, status string, start time.Time) {
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(metrics.MeasureDuration(start))
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
}
