package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dq-index/internal/domain"
	"dq-index/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// TimestampLayout is the fixed-width UTC layout used for submission_date so that
// ORDER BY on the text column is chronological.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// sqlxSubmissionRepository implements domain.SubmissionRepository using sqlx.
type sqlxSubmissionRepository struct {
	db *sqlx.DB
}

// NewSQLXSubmissionRepository creates a new instance of sqlxSubmissionRepository.
func NewSQLXSubmissionRepository(db *sqlx.DB) domain.SubmissionRepository {
	return &sqlxSubmissionRepository{db: db}
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and falls back to RFC3339 for rows written by other tools.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func toDomainAnswer(m *models.Answer) *domain.Answer {
	return &domain.Answer{
		ID:           m.ID,
		SubmissionID: m.SubmissionID,
		Category:     m.Category,
		SubCategory:  m.SubCategory,
		QuestionID:   m.QuestionID,
		Question:     m.Question,
		Value:        m.Answer.String,
	}
}

func (r *sqlxSubmissionRepository) GetSubmissionByEmpID(ctx context.Context, empID string) (*domain.Submission, error) {
	var row models.Submission
	query := `SELECT id, emp_id, submission_date FROM submissions WHERE emp_id = ?`

	err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, empID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission by emp_id: %w", err)
	}

	submittedAt, err := ParseTimestamp(row.SubmissionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid submission_date %q: %w", row.SubmissionDate, err)
	}
	return &domain.Submission{
		ID:             row.ID,
		EmpID:          row.EmpID,
		SubmissionDate: submittedAt,
	}, nil
}

func (r *sqlxSubmissionRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	if submission.SubmissionDate.IsZero() {
		submission.SubmissionDate = time.Now().UTC()
	}
	row := models.Submission{
		EmpID:          submission.EmpID,
		SubmissionDate: FormatTimestamp(submission.SubmissionDate),
	}
	query := `INSERT INTO submissions (emp_id, submission_date) VALUES (:emp_id, :submission_date)`

	result, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read submission id: %w", err)
	}
	submission.ID = id
	return nil
}

func (r *sqlxSubmissionRepository) DeleteSubmission(ctx context.Context, submissionID int64) error {
	query := `DELETE FROM submissions WHERE id = ?`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, submissionID); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

func (r *sqlxSubmissionRepository) DeleteAnswersBySubmissionID(ctx context.Context, submissionID int64) error {
	query := `DELETE FROM answers WHERE submission_id = ?`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, submissionID); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	return nil
}

// SaveAnswer inserts an answer; a second answer for the same coordinates overwrites the first.
func (r *sqlxSubmissionRepository) SaveAnswer(ctx context.Context, answer *domain.Answer) error {
	query := `INSERT INTO answers (submission_id, category, subcategory, question_id, question, answer)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT (submission_id, category, subcategory, question_id)
	          DO UPDATE SET question = excluded.question, answer = excluded.answer
	          RETURNING id`

	var id int64
	err := GetExecutor(ctx, r.db).GetContext(ctx, &id, query,
		answer.SubmissionID,
		answer.Category,
		answer.SubCategory,
		answer.QuestionID,
		answer.Question,
		answer.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to save answer %s: %w", answer.CompositeKey(), err)
	}
	answer.ID = id
	return nil
}

func (r *sqlxSubmissionRepository) GetAnswersBySubmissionID(ctx context.Context, submissionID int64) ([]*domain.Answer, error) {
	var rows []models.Answer
	query := `SELECT id, submission_id, category, subcategory, question_id, question, answer
	          FROM answers WHERE submission_id = ? ORDER BY id`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, submissionID); err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	answers := make([]*domain.Answer, len(rows))
	for i := range rows {
		answers[i] = toDomainAnswer(&rows[i])
	}
	return answers, nil
}

func (r *sqlxSubmissionRepository) ListSubmissions(ctx context.Context) ([]*domain.SubmissionSummary, error) {
	var rows []models.SubmissionWithCount
	query := `SELECT s.id, s.emp_id, s.submission_date, COUNT(a.id) AS answer_count
	          FROM submissions s
	          LEFT JOIN answers a ON s.id = a.submission_id
	          GROUP BY s.id, s.emp_id, s.submission_date
	          ORDER BY s.submission_date DESC, s.id DESC`

	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	summaries := make([]*domain.SubmissionSummary, 0, len(rows))
	for _, row := range rows {
		submittedAt, err := ParseTimestamp(row.SubmissionDate)
		if err != nil {
			return nil, fmt.Errorf("invalid submission_date %q: %w", row.SubmissionDate, err)
		}
		summaries = append(summaries, &domain.SubmissionSummary{
			ID:             row.ID,
			EmpID:          row.EmpID,
			SubmissionDate: submittedAt,
			AnswerCount:    row.AnswerCount,
		})
	}
	return summaries, nil
}

func (r *sqlxSubmissionRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
