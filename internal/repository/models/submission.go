package models

import "database/sql"

// Submission is a row of the submissions table.
type Submission struct {
	ID             int64  `db:"id"`
	EmpID          string `db:"emp_id"`
	SubmissionDate string `db:"submission_date"` // fixed-width UTC text, sorts chronologically
}

// SubmissionWithCount is a listing row joined with its answer count.
type SubmissionWithCount struct {
	Submission
	AnswerCount int `db:"answer_count"`
}

// Answer is a row of the answers table.
type Answer struct {
	ID           int64          `db:"id"`
	SubmissionID int64          `db:"submission_id"`
	Category     string         `db:"category"`
	SubCategory  string         `db:"subcategory"`
	QuestionID   string         `db:"question_id"`
	Question     string         `db:"question"`
	Answer       sql.NullString `db:"answer"`
}
