package handler_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dq-index/internal/database"
	"dq-index/internal/dto"
	"dq-index/internal/export"
	"dq-index/internal/handler"
	"dq-index/internal/middleware"
	"dq-index/internal/repository"
	"dq-index/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newTestApp wires the real stack on a temporary SQLite file.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.NewSQLXSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSQLXSubmissionRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Routes{
		Submissions: handler.NewSubmissionHandler(service.NewSubmissionService(repo, txManager, nil, 0)),
		Exports:     handler.NewExportHandler(service.NewExportService(repo)),
		Health:      handler.NewHealthHandler(repo, nil),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRoot(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, handler.RootMessage, decode[dto.MessageResponse](t, resp).Message)
}

func TestCreateAndGetSubmission(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/submissions/",
		`{"emp_id":"A1000","answers":{"ops_infra_1":"yes","bad":"x","ops_infra_2":3}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[dto.CreateSubmissionResponse](t, resp)
	assert.Equal(t, "Submission successful", created.Message)
	assert.Equal(t, "A1000", created.EmpID)
	assert.NotZero(t, created.SubmissionID)

	resp = doJSON(t, app, http.MethodGet, "/submissions/A1000", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SubmissionResponse](t, resp)
	assert.Equal(t, map[string]string{"ops_infra_1": "yes", "ops_infra_2": "3"}, got.Answers)
	require.Len(t, got.AnswersList, 2)
	assert.Equal(t, dto.AnswerResponse{
		Category: "ops", SubCategory: "infra", QuestionID: "1", Question: "Question 1", Answer: "yes",
	}, got.AnswersList[0])
}

func TestCreateSubmission_BadRequests(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"MalformedJSON", `{"emp_id":`},
		{"WrongEmpIDFormat", `{"emp_id":"B1234","answers":{}}`},
		{"TooLong", `{"emp_id":"A12345","answers":{}}`},
		{"MissingEmpID", `{"answers":{"ops_infra_1":"yes"}}`},
		{"MissingAnswers", `{"emp_id":"A1234"}`},
		{"NullAnswers", `{"emp_id":"A1234","answers":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/submissions/", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[middleware.ErrorResponse](t, resp)
			assert.Equal(t, "INVALID_INPUT", body.Code)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestCreateSubmission_RequiresJSONContentType(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/submissions/", strings.NewReader(`{"emp_id":"A1234","answers":{}}`))
	resp, err := app.Test(req, -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decode[middleware.ErrorResponse](t, resp).Code)
}

func TestConcurrentSubmissions(t *testing.T) {
	app := newTestApp(t)

	const employees = 20
	statuses := make(chan int, employees)
	var wg sync.WaitGroup
	for i := 0; i < employees; i++ {
		wg.Add(1)
		go func(empID string) {
			defer wg.Done()
			body := fmt.Sprintf(`{"emp_id":%q,"answers":{"ops_infra_1":"yes","ops_infra_2":"no"}}`, empID)
			req := httptest.NewRequest(http.MethodPost, "/submissions/", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			statuses <- resp.StatusCode
		}(fmt.Sprintf("A%04d", i))
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}

	resp := doJSON(t, app, http.MethodGet, "/submissions/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.SubmissionSummaryResponse](t, resp), employees)
}

func TestResubmitReplaces(t *testing.T) {
	app := newTestApp(t)

	doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A1234","answers":{"ops_infra_1":"first"}}`)
	resp := doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A1234","answers":{"ops_infra_2":"second"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[dto.SubmissionResponse](t, doJSON(t, app, http.MethodGet, "/submissions/A1234", ""))
	assert.Equal(t, map[string]string{"ops_infra_2": "second"}, got.Answers)
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/submissions/UNKNOWN", "/export/UNKNOWN", "/export/UNKNOWN?format=csv"} {
		resp := doJSON(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		body := decode[middleware.ErrorResponse](t, resp)
		assert.Equal(t, "NOT_FOUND", body.Code)
		assert.Equal(t, "Submission not found", body.Detail)
	}
}

func TestListSubmissions(t *testing.T) {
	app := newTestApp(t)

	empty := decode[[]dto.SubmissionSummaryResponse](t, doJSON(t, app, http.MethodGet, "/submissions", ""))
	assert.Empty(t, empty)

	doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A0001","answers":{"ops_infra_1":"yes"}}`)
	time.Sleep(2 * time.Millisecond)
	doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A0002","answers":{}}`)

	resp := doJSON(t, app, http.MethodGet, "/submissions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.SubmissionSummaryResponse](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "A0002", list[0].EmpID)
	assert.Equal(t, 0, list[0].AnswerCount)
	assert.Equal(t, "A0001", list[1].EmpID)
	assert.Equal(t, 1, list[1].AnswerCount)
}

func TestExportSubmission(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodPost, "/submissions/",
		`{"emp_id":"A1000","answers":{"ops_infra_1":"yes","ops_data_quality_2":"no"}}`)

	t.Run("JSON", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/export/A1000", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rows []map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 2)
		assert.Equal(t, map[string]string{
			"Employee ID": "A1000",
			"Category":    "ops",
			"Subcategory": "data_quality",
			"Question":    "Question 2",
			"Answer":      "no",
		}, rows[0])
	})

	t.Run("CSV", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/export/A1000?format=csv", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, export.ContentTypeCSV, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "survey_responses_A1000.csv")

		rows, err := csv.NewReader(resp.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"Employee ID", "Category", "Subcategory", "Question", "Answer"}, rows[0])
	})

	t.Run("XLSX", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/export/A1000?format=xlsx", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, export.ContentTypeXLSX, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "survey_responses_A1000.xlsx")

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{export.SingleSheetName}, f.GetSheetList())
		rows, err := f.GetRows(export.SingleSheetName)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/export/A1000?format=pdf", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestExportAll(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []string{export.SingleSheetName}, f.GetSheetList())
	f.Close()

	doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A0001","answers":{"ops_infra_1":"yes"}}`)
	time.Sleep(2 * time.Millisecond)
	doJSON(t, app, http.MethodPost, "/submissions/", `{"emp_id":"A0002","answers":{"ops_infra_1":"no"}}`)

	resp = doJSON(t, app, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "all_survey_responses_")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err = excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Emp_A0002", "Emp_A0001"}, f.GetSheetList())
}

// stubPinger returns err from Ping.
type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         handler.Pinger
		cache      handler.Pinger
		wantStatus int
		want       dto.HealthResponse
	}{
		{"Healthy", stubPinger{}, nil, http.StatusOK, dto.HealthResponse{Status: "ok", DB: "ok", Cache: "disabled"}},
		{"WithCache", stubPinger{}, stubPinger{}, http.StatusOK, dto.HealthResponse{Status: "ok", DB: "ok", Cache: "ok"}},
		{"CacheDown", stubPinger{}, stubPinger{errors.New("refused")}, http.StatusOK, dto.HealthResponse{Status: "degraded", DB: "ok", Cache: "down"}},
		{"DBDown", stubPinger{errors.New("closed")}, nil, http.StatusServiceUnavailable, dto.HealthResponse{Status: "down", DB: "down", Cache: "disabled"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.db, tt.cache)
			app := fiber.New()
			app.Get("/health", h.Health)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.want, decode[dto.HealthResponse](t, resp))
		})
	}
}
