package export

import (
	"testing"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/finchat/invoice-validator/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sampleReport() *report.Report {
	payload := &models.ValidationPayload{
		InvoiceNumber:           "INV-9",
		InvoiceValidationStatus: models.StatusRejected,
		InvoiceValidationIssues: map[string]string{"hsn_sac_code": "Missing required field"},
		PoComparisonStatus:      models.StatusRejected,
		ExtractedInvoiceFields: models.ExtractedDocument{
			"invoice_number": "INV-9",
			"items": []interface{}{
				map[string]interface{}{"description": "Pens", "quantity": 10.0},
			},
		},
		ExtractedPoData: models.ExtractedDocument{"invoice_number": "INV-9"},
		PoComparisonResults: &models.PoComparison{
			MismatchedFields: map[string]models.ValueMismatch{
				"total_value_of_supply": {InvoiceValue: 1500.0, PoValue: 1200.0},
			},
		},
		SelectedChecklistOption: "gst_tax_invoice",
		SummaryMessage:          "Issues found.",
	}
	rpt := report.Render(payload)
	return &rpt
}

func TestExport_ProducesAllSheets(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())

	buf, err := exporter.Export(sampleReport())
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{sheetSummary, sheetFields, sheetLineItems, sheetDiscrepancies},
		f.GetSheetList())

	invoiceNumber, err := f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, "INV-9", invoiceNumber)

	rows, err := f.GetRows(sheetDiscrepancies)
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one discrepancy")
	assert.Equal(t, "Total Value Of Supply", rows[1][1])
	assert.Equal(t, "1500", rows[1][2])
	assert.Equal(t, "1200", rows[1][3])
}

func TestExport_FieldStatusColumns(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())

	buf, err := exporter.Export(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetFields)
	require.NoError(t, err)
	require.Greater(t, len(rows), 1)

	var flagged []string
	for _, row := range rows[1:] {
		if len(row) > 3 && row[3] == "Invalid" {
			flagged = append(flagged, row[1])
		}
	}
	assert.Contains(t, flagged, "Hsn Sac Code")
}

func TestExport_NilReport(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())
	_, err := exporter.Export(nil)
	assert.Error(t, err)
}
