package exporter

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"saaspulse/internal/report"
	"saaspulse/pkg/contracts"
)

const (
	reportSheet = "Report"
	summaryCell = "A2"
)

// XLSXRenderer writes the report as a single-sheet workbook
type XLSXRenderer struct{}

// Render implements report.Renderer
func (XLSXRenderer) Render(_ context.Context, w io.Writer, p *report.Payload) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "SaaS Metrics Report " + p.ReportID,
		Creator:     contracts.GetVersionString(),
		Description: p.Outcome.Kind(),
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	set := func(cell string, v interface{}) {
		if err == nil {
			err = f.SetCellValue(reportSheet, cell, v)
		}
	}

	set("A1", "SaaS Metrics Report")
	set(summaryCell, p.Summary)
	if err == nil {
		err = f.MergeCell(reportSheet, summaryCell, "C2")
	}

	line := 4
	for _, h := range headerRows(p) {
		set("A"+strconv.Itoa(line), h[0])
		set("B"+strconv.Itoa(line), h[1])
		line++
	}

	line++
	header := line
	set("A"+strconv.Itoa(line), "metric")
	set("B"+strconv.Itoa(line), "value")
	set("C"+strconv.Itoa(line), "unit")
	for _, r := range metricRows(p) {
		line++
		set("A"+strconv.Itoa(line), r.Metric)
		set("B"+strconv.Itoa(line), cellValue(r.Value))
		set("C"+strconv.Itoa(line), r.Unit)
	}
	if err != nil {
		return fmt.Errorf("write cells: %w", err)
	}

	styles := []struct {
		from, to string
		style    int
	}{
		{"A1", "A1", bold},
		{summaryCell, "C2", wrap},
		{"A" + strconv.Itoa(header), "C" + strconv.Itoa(header), bold},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(reportSheet, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("apply style: %w", err)
		}
	}
	if err := f.SetColWidth(reportSheet, "A", "A", 26); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "B", "C", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue stores numeric strings as numbers so spreadsheets can sum them
func cellValue(s string) interface{} {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ContentType implements report.Renderer
func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements report.Renderer
func (XLSXRenderer) Extension() string { return "xlsx" }
