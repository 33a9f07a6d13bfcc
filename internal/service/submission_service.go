package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"dq-index/internal/cache"
	"dq-index/internal/domain"
	"dq-index/internal/dto"
	"dq-index/internal/logger"

	"go.uber.org/zap"
)

// SubmissionSuccessMessage is echoed back after a stored submission.
const SubmissionSuccessMessage = "Submission successful"

// SubmissionService defines the survey submission use cases.
type SubmissionService interface {
	CreateSubmission(ctx context.Context, req *dto.CreateSubmissionRequest) (*dto.CreateSubmissionResponse, error)
	GetSubmission(ctx context.Context, empID string) (*dto.SubmissionResponse, error)
	ListSubmissions(ctx context.Context) ([]dto.SubmissionSummaryResponse, error)
}

// submissionService implements SubmissionService
type submissionService struct {
	repo      domain.SubmissionRepository
	txManager domain.TransactionManager
	cache     domain.Cache // nil disables caching
	cacheTTL  time.Duration
}

// NewSubmissionService creates a new instance of submissionService.
// cacheClient may be nil.
func NewSubmissionService(
	repo domain.SubmissionRepository,
	txManager domain.TransactionManager,
	cacheClient domain.Cache,
	cacheTTL time.Duration,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		txManager: txManager,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
	}
}

// CreateSubmission stores req, replacing any earlier submission of the same employee.
func (s *submissionService) CreateSubmission(ctx context.Context, req *dto.CreateSubmissionRequest) (*dto.CreateSubmissionResponse, error) {
	if req == nil {
		return nil, domain.NewInvalidInputError("Request body is required")
	}
	if err := domain.ValidateEmployeeID(req.EmpID); err != nil {
		return nil, err
	}
	if req.Answers == nil && req.AnswersList == nil {
		return nil, domain.NewInvalidInputError("answers is required")
	}

	answers := collectAnswers(req)
	submission := domain.NewSubmission(req.EmpID)
	var replacedID int64

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetSubmissionByEmpID(txCtx, req.EmpID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.DeleteAnswersBySubmissionID(txCtx, existing.ID); err != nil {
				return err
			}
			if err := s.repo.DeleteSubmission(txCtx, existing.ID); err != nil {
				return err
			}
			replacedID = existing.ID
			logger.Get().Debug("Replacing previous submission",
				zap.String("emp_id", req.EmpID),
				zap.Int64("previous_submission_id", existing.ID))
		}

		if err := s.repo.CreateSubmission(txCtx, submission); err != nil {
			return err
		}
		for _, answer := range answers {
			answer.SubmissionID = submission.ID
			if err := s.repo.SaveAnswer(txCtx, answer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Get().Error("Failed to store submission", zap.String("emp_id", req.EmpID), zap.Error(err))
		return nil, domain.NewInternalError("Failed to store submission", err)
	}

	if replacedID != 0 {
		s.invalidate(ctx, replacedID)
	}

	logger.Get().Info("Submission stored",
		zap.String("emp_id", req.EmpID),
		zap.Int64("submission_id", submission.ID),
		zap.Int("answers", len(answers)))

	return &dto.CreateSubmissionResponse{
		Message:      SubmissionSuccessMessage,
		SubmissionID: submission.ID,
		EmpID:        req.EmpID,
	}, nil
}

// collectAnswers turns both answer forms of req into answers with distinct
// coordinates. Composite keys are taken in sorted order, then structured
// entries; a later answer for the same coordinates replaces the earlier value.
func collectAnswers(req *dto.CreateSubmissionRequest) []*domain.Answer {
	var answers []*domain.Answer
	index := make(map[[3]string]int)

	add := func(category, subCategory, questionID string, raw json.RawMessage) {
		coords := [3]string{category, subCategory, questionID}
		value := domain.AnswerValueString(raw)
		if i, ok := index[coords]; ok {
			answers[i].Value = value
			return
		}
		index[coords] = len(answers)
		answers = append(answers, domain.NewAnswer(category, subCategory, questionID, value))
	}

	keys := make([]string, 0, len(req.Answers))
	for key := range req.Answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		category, subCategory, questionID, ok := domain.ParseCompositeKey(key)
		if !ok {
			logger.Get().Debug("Skipping answer with malformed key", zap.String("key", key))
			continue
		}
		add(category, subCategory, questionID, req.Answers[key])
	}

	for _, item := range req.AnswersList {
		if item.Category == "" || item.SubCategory == "" || item.QuestionID == "" {
			logger.Get().Debug("Skipping structured answer with missing coordinates",
				zap.String("category", item.Category),
				zap.String("subcategory", item.SubCategory),
				zap.String("question_id", item.QuestionID))
			continue
		}
		add(item.Category, item.SubCategory, item.QuestionID, item.Answer)
	}
	return answers
}

// GetSubmission returns both views of an employee's answers.
func (s *submissionService) GetSubmission(ctx context.Context, empID string) (*dto.SubmissionResponse, error) {
	var (
		resp *dto.SubmissionResponse
		hit  bool
	)
	submission, err := readCurrentSubmission(ctx, s.repo, empID, func(submission *domain.Submission) error {
		if cached := s.fromCache(ctx, submission.ID); cached != nil {
			resp, hit = cached, true
			return nil
		}
		answers, err := s.repo.GetAnswersBySubmissionID(ctx, submission.ID)
		if err != nil {
			return domain.NewInternalError("Failed to get answers", err)
		}
		resp, hit = newSubmissionResponse(submission, answers), false
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !hit {
		s.toCache(ctx, submission.ID, resp)
	}
	return resp, nil
}

func newSubmissionResponse(submission *domain.Submission, answers []*domain.Answer) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		EmpID:       submission.EmpID,
		Answers:     make(map[string]string, len(answers)),
		AnswersList: make([]dto.AnswerResponse, 0, len(answers)),
	}
	for _, a := range answers {
		resp.Answers[a.CompositeKey()] = a.Value
		resp.AnswersList = append(resp.AnswersList, dto.AnswerResponse{
			Category:    a.Category,
			SubCategory: a.SubCategory,
			QuestionID:  a.QuestionID,
			Question:    a.Question,
			Answer:      a.Value,
		})
	}
	return resp
}

// ListSubmissions returns every submission, newest first.
func (s *submissionService) ListSubmissions(ctx context.Context) ([]dto.SubmissionSummaryResponse, error) {
	summaries, err := s.repo.ListSubmissions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list submissions", err)
	}

	resp := make([]dto.SubmissionSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp = append(resp, dto.SubmissionSummaryResponse{
			ID:             sum.ID,
			EmpID:          sum.EmpID,
			SubmissionDate: sum.SubmissionDate,
			AnswerCount:    sum.AnswerCount,
		})
	}
	return resp, nil
}

func (s *submissionService) fromCache(ctx context.Context, submissionID int64) *dto.SubmissionResponse {
	if s.cache == nil {
		return nil
	}
	key := cache.SubmissionKey(submissionID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	var resp dto.SubmissionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	logger.Get().Debug("Cache hit", zap.String("key", key))
	return &resp
}

func (s *submissionService) toCache(ctx context.Context, submissionID int64, resp *dto.SubmissionResponse) {
	if s.cache == nil {
		return
	}
	key := cache.SubmissionKey(submissionID)
	payload, err := json.Marshal(resp)
	if err != nil {
		logger.Get().Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops the entry of a replaced submission. Nothing reads it once
// the replacement is committed; this only frees it before the TTL does.
func (s *submissionService) invalidate(ctx context.Context, submissionID int64) {
	if s.cache == nil {
		return
	}
	key := cache.SubmissionKey(submissionID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("Cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
