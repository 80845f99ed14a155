package models

import (
	"fmt"
	"io"
	"time"
)

// AttachmentStatus is the upload lifecycle state of a file.
type AttachmentStatus string

const (
	AttachmentQueued    AttachmentStatus = "queued"
	AttachmentUploading AttachmentStatus = "uploading"
	AttachmentDone      AttachmentStatus = "done"
	AttachmentError     AttachmentStatus = "error"
)

// Terminal reports whether progress is frozen in this state.
func (s AttachmentStatus) Terminal() bool {
	return s == AttachmentDone || s == AttachmentError
}

// Attachment is a file attached to a resume draft.
type Attachment struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Size        int64            `json:"size"`
	ContentType string           `json:"contentType,omitempty"`
	Status      AttachmentStatus `json:"status"`
	Progress    int              `json:"progress"`
	StorageKey  string           `json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// HumanSize formats the size the way the attachment list shows it.
func (a Attachment) HumanSize() string {
	return HumanSize(a.Size)
}

// HumanSize renders bytes as "1.50 MB" above one megabyte, "12.3 KB" otherwise.
func HumanSize(size int64) string {
	const mb = 1024 * 1024
	if size > mb {
		return fmt.Sprintf("%.2f MB", float64(size)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(size)/1024)
}

// UploadFile is a file handed to the upload manager.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadSource records how the user picked a file.
type UploadSource string

const (
	UploadSourceSelect UploadSource = "select"
	UploadSourceDrop   UploadSource = "drop"
)
