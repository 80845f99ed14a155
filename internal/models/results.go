package models

// SaveResult is the outcome of a draft save. Exactly one of Success or Err is set.
type SaveResult struct {
	Success          bool
	Message          string
	Err              error
	ValidationErrors ValidationErrors
	// Snapshot is the snapshot the persistence call carried. It differs from
	// the requested snapshot when the request was folded into a newer save.
	Snapshot  Snapshot
	Coalesced bool
}

// SubmitResult is the outcome of a resume submission.
type SubmitResult struct {
	Success          bool
	Message          string
	Err              error
	ValidationErrors ValidationErrors
}

// UploadResult is the outcome of an attachment upload.
type UploadResult struct {
	Success    bool
	Message    string
	Err        error
	Attachment *Attachment
	// Precondition is set when the file was rejected before any network call.
	Precondition bool
}

// DeleteResult is the outcome of an attachment deletion.
type DeleteResult struct {
	Success bool
	Message string
	Err     error
}

// SaveTrigger identifies who asked for a save.
type SaveTrigger string

const (
	SaveTriggerAuto   SaveTrigger = "auto"
	SaveTriggerManual SaveTrigger = "manual"
	SaveTriggerSubmit SaveTrigger = "submit"
	SaveTriggerReset  SaveTrigger = "reset"
)

// SaveOptions tunes a single save request.
type SaveOptions struct {
	Validate bool
	Trigger  SaveTrigger
}
