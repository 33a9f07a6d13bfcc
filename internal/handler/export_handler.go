package handler

import (
	"bytes"
	"time"

	"dq-index/internal/domain"
	"dq-index/internal/dto"
	"dq-index/internal/export"
	"dq-index/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler serves submission exports as JSON, CSV or XLSX.
type ExportHandler struct {
	service service.ExportService
	now     func() time.Time
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(service service.ExportService) *ExportHandler {
	return &ExportHandler{
		service: service,
		now:     time.Now,
	}
}

// ExportSubmission godoc
// @Summary Export a submission
// @Description Returns one flat record per answer; format selects json (default), csv or xlsx
// @Tags export
// @Produce json
// @Produce text/csv
// @Param emp_id path string true "Employee ID"
// @Param format query string false "json, csv or xlsx"
// @Success 200 {array} dto.ExportRecordResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /export/{emp_id} [get]
func (h *ExportHandler) ExportSubmission(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}

	empID := c.Params("emp_id")
	records, err := h.service.ExportSubmission(c.UserContext(), empID)
	if err != nil {
		return err
	}

	switch format {
	case export.FormatCSV:
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, records); err != nil {
			return domain.NewInternalError("Failed to write CSV export", err)
		}
		return sendAttachment(c, export.EmployeeFileName(empID, format), export.ContentTypeCSV, buf.Bytes())
	case export.FormatXLSX:
		var buf bytes.Buffer
		sheets := []export.Sheet{{Name: export.SingleSheetName, Records: records}}
		if err := export.WriteWorkbook(&buf, sheets); err != nil {
			return domain.NewInternalError("Failed to write XLSX export", err)
		}
		return sendAttachment(c, export.EmployeeFileName(empID, format), export.ContentTypeXLSX, buf.Bytes())
	}

	return c.JSON(dto.NewExportRecordResponses(records))
}

// ExportAll godoc
// @Summary Export all submissions
// @Description XLSX workbook with one sheet per employee, newest submission first
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} middleware.ErrorResponse
// @Router /export [get]
func (h *ExportHandler) ExportAll(c *fiber.Ctx) error {
	sheets, err := h.service.ExportAll(c.UserContext())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets); err != nil {
		return domain.NewInternalError("Failed to write XLSX export", err)
	}
	return sendAttachment(c, export.AllFileName(h.now().UTC()), export.ContentTypeXLSX, buf.Bytes())
}

func sendAttachment(c *fiber.Ctx, filename, contentType string, body []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(body)
}
