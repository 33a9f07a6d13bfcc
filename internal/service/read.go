package service

import (
	"context"

	"dq-index/internal/domain"
	"dq-index/internal/logger"

	"go.uber.org/zap"
)

// maxReadAttempts bounds how often readCurrentSubmission restarts when
// resubmissions keep replacing the submission it is reading.
const maxReadAttempts = 5

// readCurrentSubmission looks up empID's submission and hands it to load.
// Lookup and load are separate statements, and a resubmission committed in
// between deletes the looked-up submission together with its answers. The
// lookup is therefore repeated after load; if it names another submission the
// read starts over with that one. Submission ids are never reused, so a
// matching id means load saw a complete answer set.
func readCurrentSubmission(
	ctx context.Context,
	repo domain.SubmissionRepository,
	empID string,
	load func(submission *domain.Submission) error,
) (*domain.Submission, error) {
	submission, err := repo.GetSubmissionByEmpID(ctx, empID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get submission", err)
	}

	for attempt := 1; ; attempt++ {
		if submission == nil {
			return nil, domain.NewSubmissionNotFoundError(empID)
		}
		if err := load(submission); err != nil {
			return nil, err
		}

		current, err := repo.GetSubmissionByEmpID(ctx, empID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to get submission", err)
		}
		if current != nil && current.ID == submission.ID {
			return submission, nil
		}
		if attempt == maxReadAttempts {
			return nil, domain.NewInternalError("Submission kept changing while being read", nil)
		}
		logger.Get().Debug("Submission replaced during read, retrying",
			zap.String("emp_id", empID),
			zap.Int64("read_submission_id", submission.ID),
			zap.Int("attempt", attempt))
		submission = current
	}
}
