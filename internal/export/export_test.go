package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"dq-index/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords(empID string) []domain.ExportRecord {
	return []domain.ExportRecord{
		{EmpID: empID, Category: "ops", SubCategory: "infra", Question: "Question 1", Answer: "yes"},
		{EmpID: empID, Category: "ops", SubCategory: "data_quality", Question: "Question 2", Answer: "3, maybe"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
		{"CSV", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, domain.IsCode(err, domain.CodeInvalidInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "survey_responses_A1234.xlsx", EmployeeFileName("A1234", FormatXLSX))
	assert.Equal(t, "survey_responses_A1234.csv", EmployeeFileName("A1234", FormatCSV))
	assert.Equal(t, "all_survey_responses_2025-06-30.xlsx", AllFileName(time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Emp_A0001", EmployeeSheetName("A0001"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords("A1234")))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportHeader, rows[0])
	assert.Equal(t, []string{"A1234", "ops", "infra", "Question 1", "yes"}, rows[1])
	assert.Equal(t, "3, maybe", rows[2][4])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Employee ID,Category,Subcategory,Question,Answer\n", buf.String())
}

func TestWriteWorkbook_SingleSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []Sheet{{Name: SingleSheetName, Records: sampleRecords("A1234")}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SingleSheetName}, f.GetSheetList())
	rows, err := f.GetRows(SingleSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ExportHeader, rows[0])
	assert.Equal(t, []string{"A1234", "ops", "data_quality", "Question 2", "3, maybe"}, rows[2])
}

func TestWriteWorkbook_SheetPerEmployee(t *testing.T) {
	sheets := []Sheet{
		{Name: EmployeeSheetName("A0002"), Records: sampleRecords("A0002")},
		{Name: EmployeeSheetName("A0001")},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sheets))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Emp_A0002", "Emp_A0001"}, f.GetSheetList())
	rows, err := f.GetRows("Emp_A0002")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	empty, err := f.GetRows("Emp_A0001")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SingleSheetName}, f.GetSheetList())
}
