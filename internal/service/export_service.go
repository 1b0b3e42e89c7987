package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const payrollSheet = "Payroll"

var ErrExportGenerateFail = errors.New("failed to generate excel file")

var payrollHeaders = []string{
	"Email", "Name", "Role", "Hours", "Hours (label)", "Shifts", "With companion", "Open shifts", "Hourly rate", "Pay",
}

// ExportService renders reports as .xlsx workbooks. The buffer is written to
// the response by the handler.
type ExportService interface {
	PayrollXLSX(month string) (*bytes.Buffer, string, error)
}

type exportService struct {
	payroll PayrollService
	logger  *zap.Logger
}

func NewExportService(payroll PayrollService, logger *zap.Logger) ExportService {
	return &exportService{payroll: payroll, logger: logger}
}

func (s *exportService) PayrollXLSX(month string) (*bytes.Buffer, string, error) {
	// 1. Build the summary
	summary, err := s.payroll.MonthSummary(month)
	if err != nil {
		return nil, "", err
	}

	// 2. Workbook with a single sheet
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(payrollSheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(payrollSheet, "A", "A", 28)
	f.SetColWidth(payrollSheet, "B", "C", 16)
	f.SetColWidth(payrollSheet, "D", "J", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 3. Title and header
	f.SetCellValue(payrollSheet, "A1", fmt.Sprintf("Payroll %s", month))
	f.MergeCell(payrollSheet, "A1", cell(colName(len(payrollHeaders)-1), 1))
	f.SetCellStyle(payrollSheet, "A1", "A1", headerStyle)

	for i, h := range payrollHeaders {
		f.SetCellValue(payrollSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(payrollSheet, "A2", cell(colName(len(payrollHeaders)-1), 2), headerStyle)

	// 4. One row per worker, then the grand total
	row := 3
	for _, line := range summary.Lines {
		values := []interface{}{
			line.UserEmail, line.Name, line.Role, line.TotalHours, line.HoursLabel,
			line.ShiftCount, line.CompanionShiftCount, line.OpenShiftCount, line.HourlyRate, line.Pay,
		}
		for i, v := range values {
			f.SetCellValue(payrollSheet, cell(colName(i), row), v)
		}
		row++
	}

	totals := []interface{}{
		"Total", fmt.Sprintf("%d users", summary.Totals.UserCount), "", summary.Totals.Hours, summary.TotalsLabel,
		summary.Totals.ShiftCount, summary.Totals.CompanionShiftCount, summary.Totals.OpenShiftCount, "", summary.TotalPay,
	}
	for i, v := range totals {
		f.SetCellValue(payrollSheet, cell(colName(i), row), v)
	}
	f.SetCellStyle(payrollSheet, cell("A", row), cell(colName(len(payrollHeaders)-1), row), headerStyle)

	// 5. Write to buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write payroll workbook", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("payroll_%s.xlsx", month), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
