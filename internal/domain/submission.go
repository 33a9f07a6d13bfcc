package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// keySeparator splits a composite answer key into its parts.
	keySeparator = "_"

	empIDPrefix = "A"
	empIDLength = 5
)

// Submission is one employee's complete set of survey answers at a point in time.
type Submission struct {
	ID             int64
	EmpID          string
	SubmissionDate time.Time
	Answers        []*Answer
}

// NewSubmission creates a Submission stamped with the current time.
func NewSubmission(empID string) *Submission {
	return &Submission{
		EmpID:          empID,
		SubmissionDate: time.Now().UTC(),
	}
}

// Validate validates the submission
func (s *Submission) Validate() error {
	return ValidateEmployeeID(s.EmpID)
}

// Answer is a single (category, subcategory, question) response.
type Answer struct {
	ID           int64
	SubmissionID int64
	Category     string
	SubCategory  string
	QuestionID   string
	Question     string
	Value        string
}

// NewAnswer builds an answer and synthesizes its placeholder question text.
func NewAnswer(category, subCategory, questionID, value string) *Answer {
	return &Answer{
		Category:    category,
		SubCategory: subCategory,
		QuestionID:  questionID,
		Question:    QuestionText(questionID),
		Value:       value,
	}
}

// CompositeKey encodes the answer coordinates the way clients send them.
func (a *Answer) CompositeKey() string {
	return strings.Join([]string{a.Category, a.SubCategory, a.QuestionID}, keySeparator)
}

// SubmissionSummary is a listing row: a submission and how many answers it holds.
type SubmissionSummary struct {
	ID             int64
	EmpID          string
	SubmissionDate time.Time
	AnswerCount    int
}

// ExportRecord is one flat, human-labelled row of a submission export.
type ExportRecord struct {
	EmpID       string
	Category    string
	SubCategory string
	Question    string
	Answer      string
}

// ExportHeader lists the column labels of an ExportRecord in order.
var ExportHeader = []string{"Employee ID", "Category", "Subcategory", "Question", "Answer"}

// Row returns the record values in ExportHeader order.
func (r ExportRecord) Row() []string {
	return []string{r.EmpID, r.Category, r.SubCategory, r.Question, r.Answer}
}

// ValidateEmployeeID checks the "A" + 4 digits format.
func ValidateEmployeeID(empID string) error {
	if len(empID) != empIDLength || !strings.HasPrefix(empID, empIDPrefix) {
		return NewInvalidInputError("Employee ID must be 'A' followed by 4 digits")
	}
	for _, r := range empID[len(empIDPrefix):] {
		if r < '0' || r > '9' {
			return NewInvalidInputError("Employee ID must be 'A' followed by 4 digits")
		}
	}
	return nil
}

// ParseCompositeKey splits "category_sub_category_questionId" into an answer skeleton.
// The first token is the category, the last the question id and everything in
// between (re-joined with underscores) the subcategory. Keys with fewer than three
// tokens are rejected. Underscores inside a category or question id cannot be
// told apart from separators.
func ParseCompositeKey(key string) (category, subCategory, questionID string, ok bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) < 3 {
		return "", "", "", false
	}
	category = parts[0]
	questionID = parts[len(parts)-1]
	subCategory = strings.Join(parts[1:len(parts)-1], keySeparator)
	return category, subCategory, questionID, true
}

// QuestionText fabricates the stored question label; no question catalogue is consulted.
func QuestionText(questionID string) string {
	return fmt.Sprintf("Question %s", questionID)
}

// AnswerValueString coerces a raw JSON answer value to its stored string form.
// Strings are unquoted, null becomes empty and every other value keeps its
// compact JSON text (numbers stay exactly as sent).
func AnswerValueString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
