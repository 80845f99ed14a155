package services_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/hanjob/resume-api/internal/models"
)

// MockDraftRepository is a mock implementation of repository.DraftRepository
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) EnsureDraft(ctx context.Context, draftID string) error {
	args := m.Called(ctx, draftID)
	return args.Error(0)
}

func (m *MockDraftRepository) SaveDraft(ctx context.Context, draftID string, snapshot models.Snapshot) error {
	args := m.Called(ctx, draftID, snapshot)
	return args.Error(0)
}

func (m *MockDraftRepository) LoadDraft(ctx context.Context, draftID string) (models.Snapshot, bool, error) {
	args := m.Called(ctx, draftID)
	return args.Get(0).(models.Snapshot), args.Bool(1), args.Error(2)
}

func (m *MockDraftRepository) CreateSubmission(ctx context.Context, draftID string, snapshot models.Snapshot) (string, error) {
	args := m.Called(ctx, draftID, snapshot)
	return args.String(0), args.Error(1)
}

func (m *MockDraftRepository) AddAttachment(ctx context.Context, draftID string, attachment models.Attachment) error {
	args := m.Called(ctx, draftID, attachment)
	return args.Error(0)
}

func (m *MockDraftRepository) GetAttachment(ctx context.Context, draftID, attachmentID string) (models.Attachment, error) {
	args := m.Called(ctx, draftID, attachmentID)
	return args.Get(0).(models.Attachment), args.Error(1)
}

func (m *MockDraftRepository) DeleteAttachment(ctx context.Context, draftID, attachmentID string) error {
	args := m.Called(ctx, draftID, attachmentID)
	return args.Error(0)
}

func (m *MockDraftRepository) ListAttachments(ctx context.Context, draftID string) ([]models.Attachment, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, onProgress func(int)) (string, error) {
	args := m.Called(ctx, key, body, size, contentType, onProgress)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
