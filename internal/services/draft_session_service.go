package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/cache"
	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/repository"
	"github.com/hanjob/resume-api/pkg/jwt"
	"github.com/hanjob/resume-api/pkg/logger"
)

// DraftSessionService creates, finds and tears down draft sessions. Live
// sessions sit in the session cache; a request for an evicted draft reopens
// it from the repository.
type DraftSessionService struct {
	repo      repository.DraftRepository
	persister draft.Persister
	uploader  draft.Uploader
	sessions  *cache.SessionCache
	tokens    *jwt.TokenManager
	opts      draft.Options
	newID     func() string

	// openMu serializes reopening so one draft never gets two sessions.
	openMu sync.Mutex
}

// NewDraftSessionService wires the session service.
func NewDraftSessionService(
	repo repository.DraftRepository,
	persister draft.Persister,
	uploader draft.Uploader,
	sessions *cache.SessionCache,
	tokens *jwt.TokenManager,
	opts draft.Options,
) *DraftSessionService {
	return &DraftSessionService{
		repo:      repo,
		persister: persister,
		uploader:  uploader,
		sessions:  sessions,
		tokens:    tokens,
		opts:      opts,
		newID:     uuid.NewString,
	}
}

// StartSession creates an empty draft and returns its session with a signed
// session token.
func (s *DraftSessionService) StartSession(ctx context.Context) (*draft.Session, string, error) {
	draftID := s.newID()

	if err := s.repo.EnsureDraft(ctx, draftID); err != nil {
		return nil, "", fmt.Errorf("failed to create draft: %w", err)
	}

	token, err := s.tokens.GenerateToken(draftID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	session := draft.NewSession(draftID, models.Snapshot{}, nil, s.persister, s.uploader, s.opts)
	s.sessions.Put(session)

	logger.Info("Draft session started", zap.String("draft_id", draftID))
	return session, token, nil
}

// GetSession returns the live session for draftID, reopening it from storage
// when it was evicted.
func (s *DraftSessionService) GetSession(ctx context.Context, draftID string) (*draft.Session, error) {
	if session, ok := s.sessions.Get(draftID); ok {
		return session, nil
	}

	s.openMu.Lock()
	defer s.openMu.Unlock()

	if session, ok := s.sessions.Get(draftID); ok {
		return session, nil
	}

	if err := s.repo.EnsureDraft(ctx, draftID); err != nil {
		return nil, fmt.Errorf("failed to restore draft: %w", err)
	}
	session, err := draft.Open(ctx, draftID, s.persister, s.uploader, s.opts)
	if err != nil {
		return nil, err
	}
	s.sessions.Put(session)

	logger.Info("Draft session restored", zap.String("draft_id", draftID))
	return session, nil
}

// EndSession waits for in-flight saves of draftID and closes its session.
// Ending an unknown session succeeds.
func (s *DraftSessionService) EndSession(ctx context.Context, draftID string) error {
	session, ok := s.sessions.Get(draftID)
	if !ok {
		return nil
	}
	err := session.Flush(ctx)
	s.sessions.Remove(draftID)
	if err != nil {
		return fmt.Errorf("failed to flush pending saves: %w", err)
	}
	logger.Info("Draft session ended", zap.String("draft_id", draftID))
	return nil
}
