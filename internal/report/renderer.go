package report

import (
	"sort"
	"strconv"

	"github.com/finchat/invoice-validator/internal/models"
)

// NotAvailable is the display stand-in for a value that is absent or an
// empty string. The two are merged for display only; Resolve still tells
// them apart.
const NotAvailable = "Not Extracted / N/A"

// Display color classes derived from a validation status
const (
	StatusClassSuccess = "success"
	StatusClassDanger  = "danger"
	StatusClassNeutral = "neutral"
)

// ChecklistFields is the ordered set of top-level fields shown for every
// extracted document. Fields present in the document but not listed here
// are appended in sorted order so nothing extracted is silently hidden.
var ChecklistFields = []string{
	"invoice_number",
	"invoice_date",
	"supplier_name",
	"supplier_gstin",
	"supplier_address",
	"recipient_name",
	"recipient_gstin",
	"recipient_address",
	"place_of_supply",
	"hsn_sac_code",
	"total_value_of_supply",
	"tax_rate",
	"amount_of_tax_charged",
	"total_invoice_value",
	"reverse_charge_statement",
}

// Summary is the report's header block.
type Summary struct {
	InvoiceNumber      string
	ChecklistOption    string
	ChecklistLabel     string
	InvoiceStatus      models.ValidationStatus
	InvoiceStatusClass string
	PoComparisonStatus models.ValidationStatus
	PoComparisonClass  string
	Message            string
}

// FieldRow is one labelled field with its resolved value and status.
type FieldRow struct {
	Path   string
	Label  string
	Value  string
	Status FieldStatus
}

// DiscrepancyKind classifies a discrepancy entry
type DiscrepancyKind string

const (
	DiscrepancyFieldMismatch    DiscrepancyKind = "field_mismatch"
	DiscrepancyMissingInInvoice DiscrepancyKind = "missing_in_invoice"
	DiscrepancyMissingInPo      DiscrepancyKind = "missing_in_po"
	DiscrepancyLineItems        DiscrepancyKind = "line_items"
)

// Discrepancy is one entry of the flattened discrepancy summary.
type Discrepancy struct {
	Kind         DiscrepancyKind
	Label        string
	InvoiceValue string
	PoValue      string
	Message      string
}

// Report is a pure, read-only projection of a ValidationPayload. Rendering
// the same payload twice produces structurally identical Reports.
type Report struct {
	Summary       Summary
	InvoiceFields []FieldRow
	PoFields      []FieldRow
	HasPoData     bool
	InvoiceItems  []LineItemRecord
	PoItems       []LineItemRecord
	Discrepancies []Discrepancy
}

// Render composes the field evaluator and line-item reconciler into the
// displayable report. It performs no I/O and never mutates the payload;
// malformed or missing blocks degrade to "Not Extracted / N/A" rows.
func Render(payload *models.ValidationPayload) Report {
	if payload == nil {
		return Report{Summary: Summary{Message: "No data available for this report."}}
	}

	poCmp := payload.PoComparisonResults

	rpt := Report{
		Summary: Summary{
			InvoiceNumber:      payload.InvoiceNumber,
			ChecklistOption:    payload.SelectedChecklistOption,
			ChecklistLabel:     HumanizeLabel(payload.SelectedChecklistOption),
			InvoiceStatus:      payload.InvoiceValidationStatus,
			InvoiceStatusClass: statusClass(payload.InvoiceValidationStatus),
			PoComparisonStatus: payload.PoComparisonStatus,
			PoComparisonClass:  statusClass(payload.PoComparisonStatus),
			Message:            payload.SummaryMessage,
		},
		HasPoData: payload.ExtractedPoData != nil,
	}

	rpt.InvoiceFields = fieldRows(payload.ExtractedInvoiceFields, payload.InvoiceValidationIssues, poCmp, false)
	if rpt.HasPoData {
		rpt.PoFields = fieldRows(payload.ExtractedPoData, nil, poCmp, true)
	}

	var details []models.LineItemMismatch
	if poCmp != nil {
		details = poCmp.LineItemDetails
	}
	rpt.InvoiceItems = ReconcileItems(payload.ExtractedInvoiceFields.Items(), details)
	if rpt.HasPoData {
		rpt.PoItems = ReconcileItems(payload.ExtractedPoData.Items(), details)
	}

	rpt.Discrepancies = discrepancies(poCmp)
	return rpt
}

// fieldRows resolves and evaluates every checklist field, then any extra
// scalar fields the document carries, in deterministic order.
func fieldRows(doc models.ExtractedDocument, issues map[string]string, poCmp *models.PoComparison, isPoField bool) []FieldRow {
	rows := make([]FieldRow, 0, len(ChecklistFields))
	seen := make(map[string]bool, len(ChecklistFields))

	for _, path := range ChecklistFields {
		seen[path] = true
		rows = append(rows, fieldRow(doc, path, issues, poCmp, isPoField))
	}

	var extras []string
	for key, value := range doc {
		if seen[key] || key == "items" {
			continue
		}
		if _, nested := value.(map[string]interface{}); nested {
			continue
		}
		if _, list := value.([]interface{}); list {
			continue
		}
		extras = append(extras, key)
	}
	sort.Strings(extras)
	for _, path := range extras {
		rows = append(rows, fieldRow(doc, path, issues, poCmp, isPoField))
	}

	return rows
}

func fieldRow(doc models.ExtractedDocument, path string, issues map[string]string, poCmp *models.PoComparison, isPoField bool) FieldRow {
	value, ok := Resolve(doc, path)
	return FieldRow{
		Path:   path,
		Label:  HumanizeLabel(path),
		Value:  DisplayValue(value, ok),
		Status: EvaluateField(path, issues, poCmp, isPoField),
	}
}

// discrepancies flattens the comparison into one ordered list: mismatched
// top-level fields (sorted by path, map order is not stable), then fields
// missing from the invoice, then fields missing from the PO, then
// line-item notices in detail order.
func discrepancies(poCmp *models.PoComparison) []Discrepancy {
	if poCmp == nil {
		return nil
	}

	var out []Discrepancy

	paths := make([]string, 0, len(poCmp.MismatchedFields))
	for path := range poCmp.MismatchedFields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		vm := poCmp.MismatchedFields[path]
		out = append(out, Discrepancy{
			Kind:         DiscrepancyFieldMismatch,
			Label:        HumanizeLabel(path),
			InvoiceValue: DisplayValue(vm.InvoiceValue, vm.InvoiceValue != nil),
			PoValue:      DisplayValue(vm.PoValue, vm.PoValue != nil),
		})
	}

	for _, path := range poCmp.MissingInInvoice {
		out = append(out, Discrepancy{
			Kind:    DiscrepancyMissingInInvoice,
			Label:   HumanizeLabel(path),
			Message: ReasonMissingInInvoice,
		})
	}
	for _, path := range poCmp.MissingInPo {
		out = append(out, Discrepancy{
			Kind:    DiscrepancyMissingInPo,
			Label:   HumanizeLabel(path),
			Message: ReasonMissingInPo,
		})
	}

	for _, notice := range MismatchNotices(poCmp.LineItemDetails) {
		out = append(out, Discrepancy{
			Kind:    DiscrepancyLineItems,
			Label:   "Line Items",
			Message: notice,
		})
	}

	return out
}

// DisplayValue formats a resolved value for display. Absent values and
// explicit empty strings both render as NotAvailable; numbers drop
// insignificant trailing zeros so 1500.0 shows as 1500.
func DisplayValue(value interface{}, present bool) string {
	if !present || value == nil {
		return NotAvailable
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return NotAvailable
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return NotAvailable
	}
}

func statusClass(status models.ValidationStatus) string {
	switch status {
	case models.StatusAccepted:
		return StatusClassSuccess
	case models.StatusRejected:
		return StatusClassDanger
	default:
		return StatusClassNeutral
	}
}
