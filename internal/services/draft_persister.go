package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/repository"
	"github.com/hanjob/resume-api/pkg/httpclient"
	"github.com/hanjob/resume-api/pkg/logger"
	"github.com/hanjob/resume-api/pkg/trigger"
)

const submittedMessage = "Resume submitted successfully"

// DraftPersister stores drafts through the repository and announces
// submissions to the configured trigger URL.
type DraftPersister struct {
	repo       repository.DraftRepository
	triggerURL string
	httpClient httpclient.Client
}

// NewDraftPersister creates a persister. An empty triggerURL disables the
// submission webhook.
func NewDraftPersister(repo repository.DraftRepository, triggerURL string, httpClient httpclient.Client) *DraftPersister {
	return &DraftPersister{
		repo:       repo,
		triggerURL: triggerURL,
		httpClient: httpClient,
	}
}

func (p *DraftPersister) SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error) {
	if err := p.repo.SaveDraft(ctx, draftID, snapshot); err != nil {
		return "", fmt.Errorf("failed to save draft %s: %w", draftID, err)
	}
	return "", nil
}

func (p *DraftPersister) SubmitDraft(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error) {
	submissionID, err := p.repo.CreateSubmission(ctx, draftID, snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to create submission for draft %s: %w", draftID, err)
	}

	logger.Info("Resume submitted",
		zap.String("draft_id", draftID),
		zap.String("submission_id", submissionID))

	// Non-blocking
	trigger.CallAsync(p.triggerURL, submissionID, p.httpClient)

	return submittedMessage, nil
}

func (p *DraftPersister) LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error) {
	return p.repo.LoadDraft(ctx, draftID)
}

func (p *DraftPersister) LoadAttachments(ctx context.Context, draftID string) ([]models.Attachment, error) {
	return p.repo.ListAttachments(ctx, draftID)
}
