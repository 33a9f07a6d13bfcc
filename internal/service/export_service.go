package service

import (
	"context"

	"dq-index/internal/domain"
	"dq-index/internal/export"
	"dq-index/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// exportLoadConcurrency bounds the answer queries issued by ExportAll.
const exportLoadConcurrency = 4

// ExportService builds flat export records from stored submissions.
type ExportService interface {
	// ExportSubmission returns one record per answer of empID's submission.
	ExportSubmission(ctx context.Context, empID string) ([]domain.ExportRecord, error)
	// ExportAll returns one sheet per submission in listing order.
	ExportAll(ctx context.Context) ([]export.Sheet, error)
}

type exportService struct {
	repo domain.SubmissionRepository
}

// NewExportService creates a new instance of exportService.
func NewExportService(repo domain.SubmissionRepository) ExportService {
	return &exportService{repo: repo}
}

func (s *exportService) ExportSubmission(ctx context.Context, empID string) ([]domain.ExportRecord, error) {
	var answers []*domain.Answer
	submission, err := readCurrentSubmission(ctx, s.repo, empID, func(submission *domain.Submission) error {
		var err error
		answers, err = s.repo.GetAnswersBySubmissionID(ctx, submission.ID)
		if err != nil {
			return domain.NewInternalError("Failed to get answers", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toExportRecords(submission.EmpID, answers), nil
}

func (s *exportService) ExportAll(ctx context.Context) ([]export.Sheet, error) {
	summaries, err := s.repo.ListSubmissions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list submissions", err)
	}

	sheets := make([]export.Sheet, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportLoadConcurrency)

	for i, sum := range summaries {
		sheets[i].Name = export.EmployeeSheetName(sum.EmpID)
		g.Go(func() error {
			answers, err := s.repo.GetAnswersBySubmissionID(gctx, sum.ID)
			if err != nil {
				return err
			}
			sheets[i].Records = toExportRecords(sum.EmpID, answers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load answers for export", err)
	}

	logger.Get().Info("Prepared export of all submissions", zap.Int("submissions", len(sheets)))
	return sheets, nil
}

func toExportRecords(empID string, answers []*domain.Answer) []domain.ExportRecord {
	records := make([]domain.ExportRecord, 0, len(answers))
	for _, a := range answers {
		records = append(records, domain.ExportRecord{
			EmpID:       empID,
			Category:    a.Category,
			SubCategory: a.SubCategory,
			Question:    a.Question,
			Answer:      a.Value,
		})
	}
	return records
}
