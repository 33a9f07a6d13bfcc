package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"dq-index/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	// SingleSheetName names the sheet of a one-employee workbook.
	SingleSheetName = "Survey Responses"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultSheet = "Sheet1"
)

// Format selects the encoding of an employee export.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", domain.NewInvalidInputError(fmt.Sprintf("Unsupported export format %q (use json, csv or xlsx)", s))
}

// Sheet is one named worksheet of export records.
type Sheet struct {
	Name    string
	Records []domain.ExportRecord
}

// EmployeeSheetName is the sheet name used for an employee in an export-all workbook.
func EmployeeSheetName(empID string) string {
	return "Emp_" + empID
}

// EmployeeFileName is the attachment name for one employee's export.
func EmployeeFileName(empID string, format Format) string {
	return fmt.Sprintf("survey_responses_%s.%s", empID, format)
}

// AllFileName is the attachment name of the export-all workbook generated on day.
func AllFileName(day time.Time) string {
	return fmt.Sprintf("all_survey_responses_%s.xlsx", day.Format("2006-01-02"))
}

// WriteCSV writes the header line followed by one line per record.
func WriteCSV(w io.Writer, records []domain.ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// NewWorkbook builds a workbook with one sheet per entry, in order. Sheets with
// records get a header row. With no sheets the workbook holds one empty
// SingleSheetName sheet.
func NewWorkbook(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	if len(sheets) == 0 {
		if err := f.SetSheetName(defaultSheet, SingleSheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
		return f, nil
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to name sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	if len(sheet.Records) == 0 {
		return nil
	}
	header := domain.ExportHeader
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet.Name, err)
	}
	for i, r := range sheet.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := r.Row()
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet.Name, err)
		}
	}
	return nil
}

// WriteWorkbook builds the workbook for sheets and streams it to w.
func WriteWorkbook(w io.Writer, sheets []Sheet) error {
	f, err := NewWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
