package handler

import (
	"dq-index/internal/domain"
	"dq-index/internal/dto"
	"dq-index/internal/logger"
	"dq-index/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubmissionHandler handles survey submission HTTP requests
type SubmissionHandler struct {
	service service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler instance
func NewSubmissionHandler(service service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// CreateSubmission godoc
// @Summary Submit survey answers
// @Description Stores an employee's answers, replacing any earlier submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param request body dto.CreateSubmissionRequest true "Submission"
// @Success 200 {object} dto.CreateSubmissionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /submissions/ [post]
func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Rejecting malformed submission body", zap.Error(err))
		return domain.NewError(domain.CodeInvalidInput, "Invalid request body", err)
	}

	resp, err := h.service.CreateSubmission(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetSubmission godoc
// @Summary Get a submission
// @Description Returns an employee's answers keyed by composite key and as a list
// @Tags submissions
// @Produce json
// @Param emp_id path string true "Employee ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /submissions/{emp_id} [get]
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	resp, err := h.service.GetSubmission(c.UserContext(), c.Params("emp_id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListSubmissions godoc
// @Summary List submissions
// @Description Returns all submissions, newest first, with their answer counts
// @Tags submissions
// @Produce json
// @Success 200 {array} dto.SubmissionSummaryResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	resp, err := h.service.ListSubmissions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
