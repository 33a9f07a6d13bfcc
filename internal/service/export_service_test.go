package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dq-index/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestExportSubmission(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := NewExportService(repo)

	repo.On("GetSubmissionByEmpID", mock.Anything, "A1234").Return(&domain.Submission{ID: 9, EmpID: "A1234"}, nil).Twice()
	repo.On("GetAnswersBySubmissionID", mock.Anything, int64(9)).Return([]*domain.Answer{
		domain.NewAnswer("ops", "infra", "1", "yes"),
	}, nil).Once()

	records, err := svc.ExportSubmission(context.Background(), "A1234")

	require.NoError(t, err)
	assert.Equal(t, []domain.ExportRecord{{
		EmpID: "A1234", Category: "ops", SubCategory: "infra", Question: "Question 1", Answer: "yes",
	}}, records)
	repo.AssertExpectations(t)
}

func TestExportSubmission_RepositoryError(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := NewExportService(repo)

	repo.On("GetSubmissionByEmpID", mock.Anything, "A1234").Return(nil, errors.New("boom")).Once()

	_, err := svc.ExportSubmission(context.Background(), "A1234")
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestExportAll_KeepsListingOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := new(MockSubmissionRepository)
	svc := NewExportService(repo)

	summaries := make([]*domain.SubmissionSummary, 0, 10)
	for i := int64(10); i >= 1; i-- {
		empID := fmt.Sprintf("A%04d", i)
		summaries = append(summaries, &domain.SubmissionSummary{ID: i, EmpID: empID})
		repo.On("GetAnswersBySubmissionID", mock.Anything, i).
			Return([]*domain.Answer{domain.NewAnswer("ops", "infra", "1", empID)}, nil).Once()
	}
	repo.On("ListSubmissions", mock.Anything).Return(summaries, nil).Once()

	sheets, err := svc.ExportAll(context.Background())

	require.NoError(t, err)
	require.Len(t, sheets, len(summaries))
	for i, sum := range summaries {
		assert.Equal(t, "Emp_"+sum.EmpID, sheets[i].Name)
		require.Len(t, sheets[i].Records, 1)
		assert.Equal(t, sum.EmpID, sheets[i].Records[0].Answer)
	}
	repo.AssertExpectations(t)
}

func TestExportAll_LoadFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := new(MockSubmissionRepository)
	svc := NewExportService(repo)

	repo.On("ListSubmissions", mock.Anything).Return([]*domain.SubmissionSummary{
		{ID: 1, EmpID: "A0001"},
		{ID: 2, EmpID: "A0002"},
	}, nil).Once()
	repo.On("GetAnswersBySubmissionID", mock.Anything, int64(1)).Return([]*domain.Answer{}, nil).Maybe()
	repo.On("GetAnswersBySubmissionID", mock.Anything, int64(2)).Return(nil, errors.New("disk I/O error")).Once()

	sheets, err := svc.ExportAll(context.Background())

	assert.Nil(t, sheets)
	assert.True(t, domain.IsCode(err, domain.CodeInternal))
}

func TestExportAll_Empty(t *testing.T) {
	repo := new(MockSubmissionRepository)
	svc := NewExportService(repo)

	repo.On("ListSubmissions", mock.Anything).Return([]*domain.SubmissionSummary{}, nil).Once()

	sheets, err := svc.ExportAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sheets)
}
