package service

import (
	"context"
	"time"

	"dq-index/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockSubmissionRepository ---
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) GetSubmissionByEmpID(ctx context.Context, empID string) (*domain.Submission, error) {
	args := m.Called(ctx, empID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) DeleteSubmission(ctx context.Context, submissionID int64) error {
	args := m.Called(ctx, submissionID)
	return args.Error(0)
}

func (m *MockSubmissionRepository) DeleteAnswersBySubmissionID(ctx context.Context, submissionID int64) error {
	args := m.Called(ctx, submissionID)
	return args.Error(0)
}

func (m *MockSubmissionRepository) SaveAnswer(ctx context.Context, answer *domain.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetAnswersBySubmissionID(ctx context.Context, submissionID int64) ([]*domain.Answer, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Answer), args.Error(1)
}

func (m *MockSubmissionRepository) ListSubmissions(ctx context.Context) ([]*domain.SubmissionSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubmissionSummary), args.Error(1)
}

func (m *MockSubmissionRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// passthroughTxManager runs fn on the caller's context without a database.
type passthroughTxManager struct {
	calls int
}

func (p *passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}
