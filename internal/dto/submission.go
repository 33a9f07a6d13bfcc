package dto

import (
	"encoding/json"
	"time"

	"dq-index/internal/domain"
)

// CreateSubmissionRequest is the body of POST /submissions/.
// @Description Survey answers keyed by "category_subcategory_questionId"
type CreateSubmissionRequest struct {
	EmpID   string                     `json:"emp_id"`
	Answers map[string]json.RawMessage `json:"answers"`
	// AnswersList carries answers with explicit coordinates, avoiding key splitting.
	AnswersList []StructuredAnswerRequest `json:"answers_list,omitempty"`
}

// StructuredAnswerRequest is one explicitly addressed answer.
type StructuredAnswerRequest struct {
	Category    string          `json:"category"`
	SubCategory string          `json:"subcategory"`
	QuestionID  string          `json:"question_id"`
	Answer      json.RawMessage `json:"answer"`
}

// CreateSubmissionResponse is returned after a successful submission.
type CreateSubmissionResponse struct {
	Message      string `json:"message"`
	SubmissionID int64  `json:"submission_id"`
	EmpID        string `json:"emp_id"`
}

// AnswerResponse is one answer in structured form.
type AnswerResponse struct {
	Category    string `json:"category"`
	SubCategory string `json:"subcategory"`
	QuestionID  string `json:"question_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
}

// SubmissionResponse is the body of GET /submissions/{emp_id}.
type SubmissionResponse struct {
	EmpID       string            `json:"emp_id"`
	Answers     map[string]string `json:"answers"`
	AnswersList []AnswerResponse  `json:"answers_list"`
}

// SubmissionSummaryResponse is one item of GET /submissions.
type SubmissionSummaryResponse struct {
	ID             int64     `json:"id"`
	EmpID          string    `json:"emp_id"`
	SubmissionDate time.Time `json:"submission_date"`
	AnswerCount    int       `json:"answer_count"`
}

// ExportRecordResponse is one row of GET /export/{emp_id}.
type ExportRecordResponse struct {
	EmployeeID  string `json:"Employee ID"`
	Category    string `json:"Category"`
	SubCategory string `json:"Subcategory"`
	Question    string `json:"Question"`
	Answer      string `json:"Answer"`
}

// NewExportRecordResponses converts export records to their JSON shape.
func NewExportRecordResponses(records []domain.ExportRecord) []ExportRecordResponse {
	resp := make([]ExportRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, ExportRecordResponse{
			EmployeeID:  r.EmpID,
			Category:    r.Category,
			SubCategory: r.SubCategory,
			Question:    r.Question,
			Answer:      r.Answer,
		})
	}
	return resp
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
	Cache  string `json:"cache"`
}
