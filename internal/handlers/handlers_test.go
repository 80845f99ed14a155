package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hanjob/resume-api/internal/cache"
	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/middleware"
	"github.com/hanjob/resume-api/internal/repository"
	"github.com/hanjob/resume-api/internal/services"
	"github.com/hanjob/resume-api/pkg/httpclient"
	"github.com/hanjob/resume-api/pkg/jwt"
	"github.com/hanjob/resume-api/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDraftSessionService implements DraftSessionServiceInterface for testing
type MockDraftSessionService struct {
	mock.Mock
}

func (m *MockDraftSessionService) StartSession(ctx context.Context) (*draft.Session, string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*draft.Session), args.String(1), args.Error(2)
}

func (m *MockDraftSessionService) GetSession(ctx context.Context, draftID string) (*draft.Session, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*draft.Session), args.Error(1)
}

func (m *MockDraftSessionService) EndSession(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

// newOfflineService wires the real session service on memory and disk backends.
func newOfflineService(t *testing.T) (*services.DraftSessionService, *repository.MemoryDraftRepository) {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	repo := repository.NewMemoryDraftRepository()
	sessions := cache.NewSessionCache(time.Hour)
	t.Cleanup(sessions.Close)

	svc := services.NewDraftSessionService(
		repo,
		services.NewDraftPersister(repo, "", httpclient.NewStandardClient()),
		services.NewAttachmentService(repo, store),
		sessions,
		jwt.NewTokenManager("0123456789abcdef0123456789abcdef", "test", time.Hour),
		draft.Options{AutosaveDelay: time.Hour},
	)
	return svc, repo
}

// withDraft stands in for the session middleware.
func withDraft(draftID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if draftID != "" {
			c.Set(middleware.DraftIDContextKey, draftID)
		}
		c.Next()
	}
}
