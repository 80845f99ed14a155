package draft

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/metrics"
)

// MaxAttachmentSize is the hard ceiling for a single attachment (10MB).
const MaxAttachmentSize int64 = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// CheckUpload validates an attachment's name and size without touching the network.
func CheckUpload(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: %q (allowed: .pdf, .doc, .docx)", ErrUnsupportedFileType, ext)
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("%w: %d bytes (max %d bytes)", ErrFileTooLarge, size, MaxAttachmentSize)
	}
	return nil
}

// UploadManager owns the attachment list of one draft and drives each file
// through queued -> uploading -> done. Failed uploads never become visible.
type UploadManager struct {
	draftID  string
	uploader Uploader
	newID    func() string
	now      func() time.Time

	mu      sync.RWMutex
	entries map[string]*uploadEntry
	order   []string
}

type uploadEntry struct {
	file     models.Attachment
	cancel   context.CancelFunc
	deleting bool
}

// NewUploadManager creates an empty manager for draftID.
func NewUploadManager(draftID string, uploader Uploader) *UploadManager {
	return &UploadManager{
		draftID:  draftID,
		uploader: uploader,
		newID:    uuid.NewString,
		now:      time.Now,
		entries:  make(map[string]*uploadEntry),
	}
}

// Seed adds already stored attachments, e.g. when a session resumes a draft.
func (m *UploadManager) Seed(files []models.Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range files {
		if _, exists := m.entries[f.ID]; exists {
			continue
		}
		f.Status = models.AttachmentDone
		f.Progress = 100
		m.entries[f.ID] = &uploadEntry{file: f}
		m.order = append(m.order, f.ID)
	}
}

// Upload checks preconditions, then uploads file and blocks until it lands
// or fails. Concurrent calls for different files are independent.
func (m *UploadManager) Upload(ctx context.Context, file models.UploadFile) models.UploadResult {
	if err := CheckUpload(file.Name, file.Size); err != nil {
		metrics.AttachmentUploads.WithLabelValues("rejected").Inc()
		return models.UploadResult{Err: err, Precondition: true}
	}

	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	entry := &uploadEntry{
		file: models.Attachment{
			ID:          m.newID(),
			Name:        file.Name,
			Size:        file.Size,
			ContentType: file.ContentType,
			Status:      models.AttachmentQueued,
			CreatedAt:   m.now(),
		},
		cancel: cancel,
	}
	id := entry.file.ID

	m.mu.Lock()
	m.entries[id] = entry
	m.order = append(m.order, id)
	m.mu.Unlock()

	uploadCtx, span := tracer.Start(uploadCtx, "draft.upload", trace.WithAttributes(
		attribute.String("draft.id", m.draftID),
		attribute.String("attachment.id", id),
		attribute.Int64("attachment.size", file.Size),
	))
	defer span.End()

	m.mu.Lock()
	entry.file.Status = models.AttachmentUploading
	entry.file.Progress = 0
	m.mu.Unlock()

	stored, err := m.uploader.Upload(uploadCtx, m.draftID, id, file, func(pct int) {
		m.reportProgress(id, entry, pct)
	})

	m.mu.Lock()
	if m.entries[id] != entry {
		// Deleted while uploading.
		m.mu.Unlock()
		if err == nil {
			m.discardRemote(context.WithoutCancel(ctx), id)
		}
		metrics.AttachmentUploads.WithLabelValues("canceled").Inc()
		return models.UploadResult{Err: ErrUploadCanceled}
	}

	if err != nil {
		entry.file.Status = models.AttachmentError
		m.remove(id)
		m.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		metrics.AttachmentUploads.WithLabelValues("error").Inc()
		logger.Warn("Attachment upload failed",
			zap.String("draft_id", m.draftID),
			zap.String("file", file.Name),
			zap.Error(err))
		return models.UploadResult{Err: fmt.Errorf("failed to upload %s: %w", file.Name, err)}
	}

	entry.file.Status = models.AttachmentDone
	entry.file.Progress = 100
	entry.file.StorageKey = stored.StorageKey
	if stored.ContentType != "" {
		entry.file.ContentType = stored.ContentType
	}
	entry.cancel = nil
	att := entry.file
	m.mu.Unlock()

	metrics.AttachmentUploads.WithLabelValues("success").Inc()
	metrics.AttachmentUploadBytes.Observe(float64(file.Size))
	return models.UploadResult{Success: true, Message: "File uploaded", Attachment: &att}
}

// Delete removes the attachment with id. Unknown ids succeed without doing
// anything. An in-flight upload is canceled and its partial entry dropped.
func (m *UploadManager) Delete(ctx context.Context, id string) models.DeleteResult {
	ok := models.DeleteResult{Success: true, Message: "File deleted"}

	m.mu.Lock()
	entry, exists := m.entries[id]
	if !exists || entry.deleting {
		m.mu.Unlock()
		return ok
	}

	if entry.file.Status != models.AttachmentDone {
		if entry.cancel != nil {
			entry.cancel()
		}
		m.remove(id)
		m.mu.Unlock()
		return ok
	}

	entry.deleting = true
	m.mu.Unlock()

	err := m.uploader.Delete(ctx, m.draftID, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		entry.deleting = false
		return models.DeleteResult{Err: fmt.Errorf("failed to delete %s: %w", entry.file.Name, err)}
	}
	m.remove(id)
	return ok
}

// Attachments returns the visible (fully uploaded) files in upload order.
func (m *UploadManager) Attachments() []models.Attachment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Attachment, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		if e.file.Status == models.AttachmentDone {
			out = append(out, e.file)
		}
	}
	return out
}

// InFlight returns files that are still queued or uploading.
func (m *UploadManager) InFlight() []models.Attachment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Attachment
	for _, id := range m.order {
		e := m.entries[id]
		if !e.file.Status.Terminal() {
			out = append(out, e.file)
		}
	}
	return out
}

// Progress returns the upload percentage of every in-flight file keyed by id.
func (m *UploadManager) Progress() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for id, e := range m.entries {
		if !e.file.Status.Terminal() {
			out[id] = e.file.Progress
		}
	}
	return out
}

// Close cancels every in-flight upload.
func (m *UploadManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
}

func (m *UploadManager) reportProgress(id string, entry *uploadEntry, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[id] != entry || entry.file.Status != models.AttachmentUploading {
		return
	}
	if pct > entry.file.Progress {
		entry.file.Progress = pct
	}
}

func (m *UploadManager) discardRemote(ctx context.Context, id string) {
	if err := m.uploader.Delete(ctx, m.draftID, id); err != nil {
		logger.Warn("Failed to remove object of canceled upload",
			zap.String("draft_id", m.draftID),
			zap.String("attachment_id", id),
			zap.Error(err))
	}
}

// remove drops id from the manager. Callers hold m.mu.
func (m *UploadManager) remove(id string) {
	delete(m.entries, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
