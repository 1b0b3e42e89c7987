package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"go-timeclock/internal/rollup"
	"go-timeclock/internal/sales"
	"go-timeclock/internal/service"
)

func buildPayrollTable(out io.Writer, summary *service.PayrollSummary) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"名前", "Email", "役割", "勤務時間", "勤務回数", "同伴", "勤務中"})

	for _, line := range summary.Lines {
		t.AppendRow(table.Row{
			line.Name,
			line.UserEmail,
			line.Role,
			line.HoursLabel,
			line.ShiftCount,
			line.CompanionShiftCount,
			line.OpenShiftCount,
		})
	}

	t.AppendFooter(table.Row{
		"合計", "", "",
		summary.TotalsLabel,
		summary.Totals.ShiftCount,
		summary.Totals.CompanionShiftCount,
		summary.Totals.OpenShiftCount,
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	return t
}

// buildSalesTable prints one row per day and payment method.
func buildSalesTable(out io.Writer, summary *sales.Summary) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"日付", "支払方法", "金額", "日計"})

	for _, day := range summary.Days {
		for _, category := range rollup.SortedKeys(day.ByCategory) {
			t.AppendRow(table.Row{day.Date, category, day.ByCategory[category], day.Total})
		}
	}

	t.AppendFooter(table.Row{"", "", "総売上", summary.Total})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, AutoMerge: true, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	return t
}
