package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/pkg/logger"
)

// DefaultMessageTTL is how long a status message stays visible.
const DefaultMessageTTL = 3 * time.Second

// Options configures a Session.
type Options struct {
	AutosaveDelay time.Duration
	MessageTTL    time.Duration
}

// MessageKind classifies a status message.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is a transient status line shown after a command.
type Message struct {
	Text string      `json:"text"`
	Kind MessageKind `json:"kind"`
	At   time.Time   `json:"at"`
}

// View is everything the presentation layer renders.
type View struct {
	DraftID              string                  `json:"draftId"`
	State                State                   `json:"state"`
	Snapshot             models.Snapshot         `json:"snapshot"`
	Dirty                bool                    `json:"dirty"`
	Saving               bool                    `json:"saving"`
	ValidationErrors     models.ValidationErrors `json:"validationErrors"`
	Attachments          []models.Attachment     `json:"attachments"`
	Uploads              []models.Attachment     `json:"uploads"`
	UploadProgressByFile map[string]int          `json:"uploadProgressByFile"`
	LastMessage          *Message                `json:"lastMessage,omitempty"`
	PreviewOpen          bool                    `json:"previewOpen"`
}

// Session is one editing session of a resume draft. It owns the store, the
// autosave timer and the attachment list, and exposes the form commands.
type Session struct {
	draftID     string
	store       *Store
	coordinator *SaveCoordinator
	autosaver   *AutoSaver
	uploads     *UploadManager
	submitter   *SubmissionController
	messageTTL  time.Duration
	now         func() time.Time

	mu               sync.Mutex
	state            State
	validationErrors models.ValidationErrors
	message          *Message
	previewOpen      bool
	saving           int
	closed           bool
}

// Open starts a session for draftID, restoring any stored draft and its
// attachments.
func Open(ctx context.Context, draftID string, persister Persister, uploader Uploader, opts Options) (*Session, error) {
	initial, found, err := persister.LoadDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	attachments, err := persister.LoadAttachments(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	if !found {
		initial = models.Snapshot{}
	}
	return NewSession(draftID, initial, attachments, persister, uploader, opts), nil
}

// NewSession wires the engine for draftID around initial values.
func NewSession(draftID string, initial models.Snapshot, attachments []models.Attachment, persister Persister, uploader Uploader, opts Options) *Session {
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = DefaultMessageTTL
	}

	validator := NewValidator()
	store := NewStore(initial)
	coordinator := NewSaveCoordinator(draftID, store, persister, validator)
	uploads := NewUploadManager(draftID, uploader)
	uploads.Seed(attachments)

	s := &Session{
		draftID:          draftID,
		store:            store,
		coordinator:      coordinator,
		uploads:          uploads,
		messageTTL:       opts.MessageTTL,
		now:              time.Now,
		state:            StateIdle,
		validationErrors: models.ValidationErrors{},
	}

	saver := &trackingSaver{session: s, next: coordinator}
	s.autosaver = NewAutoSaver(store, saver, opts.AutosaveDelay)
	s.submitter = NewSubmissionController(draftID, store, saver, persister, validator)
	s.submitter.OnValidated(func() { s.fire(EventValid) })

	if !initial.IsZero() {
		s.state = StateEditing
	}
	return s
}

// DraftID returns the identifier of the draft being edited.
func (s *Session) DraftID() string {
	return s.draftID
}

// EditField sets one form field.
func (s *Session) EditField(name, value string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	field, err := models.ParseField(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The submitted snapshot is fixed until the submission finishes.
	if s.state == StateValidating || s.state == StateSubmitting {
		return ErrSubmitInProgress
	}
	if err := s.store.SetField(field, value); err != nil {
		return err
	}
	delete(s.validationErrors, field)
	if next, err := Transition(s.state, EventEdit); err == nil {
		s.state = next
	}
	return nil
}

// RequestSave validates and saves the form immediately.
func (s *Session) RequestSave(ctx context.Context) models.SaveResult {
	if s.isClosed() {
		return models.SaveResult{Err: ErrSessionClosed}
	}
	s.beginSave()
	res := s.coordinator.Save(ctx, s.store.Snapshot(), models.SaveOptions{
		Validate: true,
		Trigger:  models.SaveTriggerManual,
	})
	s.endSave()

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case res.Success:
		s.validationErrors = models.ValidationErrors{}
		s.setMessage(res.Message, MessageSuccess)
	case errors.Is(res.Err, ErrValidation):
		s.validationErrors = res.ValidationErrors
	default:
		s.setMessage("Failed to save draft", MessageError)
		logger.Warn("Manual save failed", zap.String("draft_id", s.draftID), zap.Error(res.Err))
	}
	return res
}

// RequestSubmit validates, saves and submits the form.
func (s *Session) RequestSubmit(ctx context.Context) models.SubmitResult {
	if s.isClosed() {
		return models.SubmitResult{Err: ErrSessionClosed}
	}

	s.mu.Lock()
	next, err := Transition(s.state, EventSubmit)
	if err != nil {
		s.mu.Unlock()
		return models.SubmitResult{Err: ErrSubmitInProgress}
	}
	s.state = next
	s.mu.Unlock()

	res := s.submitter.Submit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case res.Success:
		s.state, _ = Transition(s.state, EventSubmitted)
		s.validationErrors = models.ValidationErrors{}
		s.setMessage(res.Message, MessageSuccess)
	case errors.Is(res.Err, ErrValidation):
		s.state, _ = Transition(s.state, EventInvalid)
		s.validationErrors = res.ValidationErrors
	case errors.Is(res.Err, ErrSubmitInProgress):
		// Another submission owns the state machine.
	default:
		if s.state == StateSubmitting {
			s.state, _ = Transition(s.state, EventSubmitFailed)
		}
		s.state, _ = Transition(s.state, EventResumeEditing)
		s.setMessage("Failed to submit resume", MessageError)
	}
	return res
}

// SelectFileForUpload uploads a file picked from the file dialog.
func (s *Session) SelectFileForUpload(ctx context.Context, file models.UploadFile) models.UploadResult {
	return s.upload(ctx, file, models.UploadSourceSelect)
}

// DropFile uploads a file dropped onto the upload area.
func (s *Session) DropFile(ctx context.Context, file models.UploadFile) models.UploadResult {
	return s.upload(ctx, file, models.UploadSourceDrop)
}

func (s *Session) upload(ctx context.Context, file models.UploadFile, source models.UploadSource) models.UploadResult {
	if s.isClosed() {
		return models.UploadResult{Err: ErrSessionClosed}
	}
	res := s.uploads.Upload(ctx, file)

	logger.Debug("Attachment upload finished",
		zap.String("draft_id", s.draftID),
		zap.String("source", string(source)),
		zap.Bool("success", res.Success))

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Success {
		s.setMessage(res.Message, MessageSuccess)
	} else if !errors.Is(res.Err, ErrUploadCanceled) {
		s.setMessage(res.Err.Error(), MessageError)
	}
	return res
}

// DeleteFile removes an attachment.
func (s *Session) DeleteFile(ctx context.Context, id string) models.DeleteResult {
	if s.isClosed() {
		return models.DeleteResult{Err: ErrSessionClosed}
	}
	res := s.uploads.Delete(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Success {
		s.setMessage(res.Message, MessageSuccess)
	} else {
		s.setMessage("Failed to delete file", MessageError)
	}
	return res
}

// OpenPreview shows the preview.
func (s *Session) OpenPreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewOpen = true
}

// ClosePreview hides the preview.
func (s *Session) ClosePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewOpen = false
}

// Preview renders the current form and attachments.
func (s *Session) Preview() Preview {
	return BuildPreview(s.store.Snapshot(), s.uploads.Attachments())
}

// View returns the observable state.
func (s *Session) View() View {
	snapshot := s.store.Snapshot()
	dirty := s.store.Dirty()
	attachments := s.uploads.Attachments()
	inFlight := s.uploads.InFlight()
	progress := s.uploads.Progress()

	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(models.ValidationErrors, len(s.validationErrors))
	for k, v := range s.validationErrors {
		errs[k] = v
	}

	v := View{
		DraftID:              s.draftID,
		State:                s.state,
		Snapshot:             snapshot,
		Dirty:                dirty,
		Saving:               s.saving > 0,
		ValidationErrors:     errs,
		Attachments:          attachments,
		Uploads:              inFlight,
		UploadProgressByFile: progress,
		PreviewOpen:          s.previewOpen,
	}
	if s.message != nil && s.now().Sub(s.message.At) < s.messageTTL {
		msg := *s.message
		v.LastMessage = &msg
	}
	return v
}

// Flush waits for in-flight saves to finish.
func (s *Session) Flush(ctx context.Context) error {
	return s.coordinator.Wait(ctx)
}

// Close tears the session down: the autosave timer is released and pending
// uploads are canceled. Commands after Close fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.autosaver.Close()
	s.uploads.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) fire(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next, err := Transition(s.state, ev); err == nil {
		s.state = next
	}
}

func (s *Session) beginSave() {
	s.mu.Lock()
	s.saving++
	s.mu.Unlock()
}

func (s *Session) endSave() {
	s.mu.Lock()
	s.saving--
	s.mu.Unlock()
}

// setMessage records a status line. Callers hold s.mu.
func (s *Session) setMessage(text string, kind MessageKind) {
	s.message = &Message{Text: text, Kind: kind, At: s.now()}
}

// trackingSaver keeps the Saving flag up to date for saves that do not go
// through RequestSave.
type trackingSaver struct {
	session *Session
	next    Saver
}

func (t *trackingSaver) Save(ctx context.Context, snapshot models.Snapshot, opts models.SaveOptions) models.SaveResult {
	t.session.beginSave()
	defer t.session.endSave()
	return t.next.Save(ctx, snapshot, opts)
}
