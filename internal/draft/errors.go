package draft

import "errors"

var (
	// ErrValidation is returned alongside a field error map.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFileType rejects attachments outside .pdf, .doc and .docx.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge rejects attachments above MaxAttachmentSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUploadCanceled is returned when an upload is deleted mid-flight.
	ErrUploadCanceled = errors.New("upload canceled")

	// ErrSubmitInProgress is returned when a submission is already running.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrSessionClosed is returned for commands issued after teardown.
	ErrSessionClosed = errors.New("session closed")
)
