// Package export turns a rendered validation report into a downloadable
// spreadsheet.
package export

import (
	"bytes"
	"fmt"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/finchat/invoice-validator/internal/report"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetSummary       = "Summary"
	sheetFields        = "Fields"
	sheetLineItems     = "Line Items"
	sheetDiscrepancies = "Discrepancies"
)

// ExcelExporter writes validation reports as .xlsx workbooks
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// Export renders a report into an xlsx workbook with summary, field,
// line-item, and discrepancy sheets.
func (e *ExcelExporter) Export(rpt *report.Report) (*bytes.Buffer, error) {
	if rpt == nil {
		return nil, fmt.Errorf("no report to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	e.fillSummary(f, rpt)

	if _, err := f.NewSheet(sheetFields); err != nil {
		return nil, fmt.Errorf("failed to create fields sheet: %w", err)
	}
	e.fillFields(f, rpt)

	if _, err := f.NewSheet(sheetLineItems); err != nil {
		return nil, fmt.Errorf("failed to create line items sheet: %w", err)
	}
	e.fillLineItems(f, rpt)

	if _, err := f.NewSheet(sheetDiscrepancies); err != nil {
		return nil, fmt.Errorf("failed to create discrepancies sheet: %w", err)
	}
	e.fillDiscrepancies(f, rpt)

	buf, err := f.WriteToBuffer()
	if err != nil {
		e.logger.Error("Failed to write workbook", zap.Error(err))
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported validation report",
		zap.String("invoice_number", rpt.Summary.InvoiceNumber),
		zap.Int("discrepancies", len(rpt.Discrepancies)))
	return buf, nil
}

func (e *ExcelExporter) fillSummary(f *excelize.File, rpt *report.Report) {
	rows := [][]interface{}{
		{"Invoice Number", rpt.Summary.InvoiceNumber},
		{"Checklist", rpt.Summary.ChecklistLabel},
		{"Invoice Validation Status", string(rpt.Summary.InvoiceStatus)},
		{"PO Comparison Status", string(rpt.Summary.PoComparisonStatus)},
		{"Summary", rpt.Summary.Message},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(sheetSummary, cell, &row)
	}
}

func (e *ExcelExporter) fillFields(f *excelize.File, rpt *report.Report) {
	header := []interface{}{"Side", "Field", "Value", "Status", "Reason", "PO Value"}
	_ = f.SetSheetRow(sheetFields, "A1", &header)

	rowNum := 2
	writeRows := func(side string, rows []report.FieldRow) {
		for _, row := range rows {
			status := "Valid"
			if !row.Status.Valid {
				status = "Invalid"
			}
			poValue := ""
			if row.Status.PoMismatch != nil {
				poValue = report.DisplayValue(row.Status.PoMismatch.PoValue, row.Status.PoMismatch.PoValue != nil)
			}
			values := []interface{}{side, row.Label, row.Value, status, row.Status.Reason, poValue}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			_ = f.SetSheetRow(sheetFields, cell, &values)
			rowNum++
		}
	}
	writeRows("Invoice", rpt.InvoiceFields)
	if rpt.HasPoData {
		writeRows("PO", rpt.PoFields)
	}
}

func (e *ExcelExporter) fillLineItems(f *excelize.File, rpt *report.Report) {
	header := []interface{}{"Side", "Row"}
	for _, field := range models.LineItemFields {
		header = append(header, report.HumanizeLabel(field))
	}
	header = append(header, "Discrepancies")
	_ = f.SetSheetRow(sheetLineItems, "A1", &header)

	rowNum := 2
	writeItems := func(side string, records []report.LineItemRecord) {
		for _, rec := range records {
			values := []interface{}{side, rec.Index + 1}
			for _, field := range models.LineItemFields {
				v, ok := rec.Item.Get(field)
				values = append(values, report.DisplayValue(v, ok))
			}
			if rec.HasDiscrepancies {
				values = append(values, "Yes")
			} else {
				values = append(values, "")
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			_ = f.SetSheetRow(sheetLineItems, cell, &values)
			rowNum++
		}
	}
	writeItems("Invoice", rpt.InvoiceItems)
	writeItems("PO", rpt.PoItems)
}

func (e *ExcelExporter) fillDiscrepancies(f *excelize.File, rpt *report.Report) {
	header := []interface{}{"Kind", "Field", "Invoice Value", "PO Value", "Message"}
	_ = f.SetSheetRow(sheetDiscrepancies, "A1", &header)

	for i, d := range rpt.Discrepancies {
		values := []interface{}{string(d.Kind), d.Label, d.InvoiceValue, d.PoValue, d.Message}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheetDiscrepancies, cell, &values)
	}
}
