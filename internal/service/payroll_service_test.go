package service

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/model"
)

func setupTestPayrollService() (PayrollService, *mockAttendanceRepo, *mockUserRepo) {
	rows := newMockAttendanceRepo()
	users := newMockUserRepo()
	engine := attendance.NewEngine(jst, nil)
	names := newNameCache(users, &fakeClock{now: at(1, 0, 0)})
	return NewPayrollService(rows, users, engine, names, nopLogger), rows, users
}

func TestPayrollService_MonthSummary(t *testing.T) {
	svc, rows, users := setupTestPayrollService()
	users.addUser("aoi@example.com", "Aoi", model.RoleCast)
	rows.add("aoi@example.com", model.RoleCast, at(1, 18, 0), at(1, 22, 10), true)
	rows.add("aoi@example.com", model.RoleCast, at(31, 23, 0), at(31, 23, 40), false)
	// a former driver whose account is gone keeps the recorded role
	rows.add("left@example.com", model.RoleDriver, at(2, 21, 0), at(3, 2, 0), false)
	// outside the month
	rows.add("aoi@example.com", model.RoleCast, time.Date(2024, 4, 1, 0, 0, 0, 0, jst), time.Date(2024, 4, 1, 3, 0, 0, 0, jst), false)

	summary, err := svc.MonthSummary("2024-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Lines) != 2 {
		t.Fatalf("expected 2 payroll lines, got %d", len(summary.Lines))
	}

	aoi := summary.Lines[0]
	if aoi.Name != "Aoi" || aoi.Role != "cast" || aoi.TotalHours != 5 || aoi.HoursLabel != "5時間0分" {
		t.Errorf("unexpected aoi line: %+v", aoi)
	}
	if aoi.HourlyRate != 0 || aoi.Pay != 0 {
		t.Errorf("pay must stay zero until rates exist, got %+v", aoi)
	}

	left := summary.Lines[1]
	if left.Name != "left@example.com" || left.Role != "driver" || left.TotalHours != 5 {
		t.Errorf("unexpected fallback line: %+v", left)
	}

	if summary.Totals.Hours != 10 || summary.Totals.ShiftCount != 3 || summary.TotalsLabel != "10時間0分" {
		t.Errorf("unexpected totals: %+v %q", summary.Totals, summary.TotalsLabel)
	}
}

func TestPayrollService_InvalidInput(t *testing.T) {
	svc, _, _ := setupTestPayrollService()

	if _, err := svc.MonthSummary("2024/03"); !errors.Is(err, ErrInvalidMonthFormat) {
		t.Errorf("expected ErrInvalidMonthFormat, got %v", err)
	}
	if _, err := svc.Summary(at(2, 0, 0), at(2, 0, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestExportService_PayrollXLSX(t *testing.T) {
	payroll, rows, users := setupTestPayrollService()
	users.addUser("aoi@example.com", "Aoi", model.RoleCast)
	rows.add("aoi@example.com", model.RoleCast, at(1, 18, 0), at(1, 22, 10), false)

	svc := NewExportService(payroll, nopLogger)
	buf, filename, err := svc.PayrollXLSX("2024-03")
	if err != nil {
		t.Fatalf("PayrollXLSX should succeed: %v", err)
	}
	if filename != "payroll_2024-03.xlsx" {
		t.Errorf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(payrollSheet, "A3"); v != "aoi@example.com" {
		t.Errorf("expected email in A3, got %q", v)
	}
	if v, _ := f.GetCellValue(payrollSheet, "B3"); v != "Aoi" {
		t.Errorf("expected name in B3, got %q", v)
	}
	if v, _ := f.GetCellValue(payrollSheet, "E3"); v != "4時間15分" {
		t.Errorf("expected hours label in E3, got %q", v)
	}
	if v, _ := f.GetCellValue(payrollSheet, "A4"); v != "Total" {
		t.Errorf("expected totals row, got %q", v)
	}
}

func TestExportService_PayrollXLSX_InvalidMonth(t *testing.T) {
	payroll, _, _ := setupTestPayrollService()
	svc := NewExportService(payroll, nopLogger)

	if _, _, err := svc.PayrollXLSX("bad"); !errors.Is(err, ErrInvalidMonthFormat) {
		t.Errorf("expected ErrInvalidMonthFormat, got %v", err)
	}
}
