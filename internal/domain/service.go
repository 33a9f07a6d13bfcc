package domain

import "context"

// SubmissionRepository defines the persistence operations for submissions and answers.
type SubmissionRepository interface {
	// GetSubmissionByEmpID returns nil, nil when no submission exists.
	GetSubmissionByEmpID(ctx context.Context, empID string) (*Submission, error)
	CreateSubmission(ctx context.Context, submission *Submission) error
	DeleteSubmission(ctx context.Context, submissionID int64) error
	DeleteAnswersBySubmissionID(ctx context.Context, submissionID int64) error
	SaveAnswer(ctx context.Context, answer *Answer) error
	GetAnswersBySubmissionID(ctx context.Context, submissionID int64) ([]*Answer, error)
	ListSubmissions(ctx context.Context) ([]*SubmissionSummary, error)
	Ping(ctx context.Context) error
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
