package models

import (
	"encoding/json"
	"fmt"
)

// Validation status values produced by the external validation backend
type ValidationStatus string

const (
	StatusAccepted ValidationStatus = "Accepted"
	StatusRejected ValidationStatus = "Rejected"
	StatusNoPo     ValidationStatus = "N/A (No PO Provided)"
)

// IsAccepted returns true for the accepting status
func (s ValidationStatus) IsAccepted() bool {
	return s == StatusAccepted
}

// ExtractedDocument is the structured field set derived externally from a
// source document (invoice or PO). Values are strings, numbers, or nested
// mappings; line items live under the "items" key.
type ExtractedDocument map[string]interface{}

// Items returns the document's line items in order, or nil when the
// document has none (or the items block is malformed).
func (d ExtractedDocument) Items() []LineItem {
	if d == nil {
		return nil
	}
	raw, ok := d["items"].([]interface{})
	if !ok {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			// Malformed entry degrades to an empty row, never an error
			items = append(items, LineItem{})
			continue
		}
		items = append(items, LineItem(m))
	}
	return items
}

// LineItem is one row of goods/services on an invoice or PO.
// Known keys: description, quantity, unit_price, total_line_amount,
// item_tax_rate, item_amount_of_tax_charged, hsn_sac_code, quantity_code.
// Any of them may be absent.
type LineItem map[string]interface{}

// LineItemFields is the display order for line-item columns.
var LineItemFields = []string{
	"description",
	"quantity",
	"unit_price",
	"total_line_amount",
	"item_tax_rate",
	"item_amount_of_tax_charged",
	"hsn_sac_code",
	"quantity_code",
}

// Get returns the value for a line-item key and whether it is present.
func (li LineItem) Get(key string) (interface{}, bool) {
	if li == nil {
		return nil, false
	}
	v, ok := li[key]
	return v, ok
}

// ValueMismatch is one field-level disagreement between invoice and PO.
type ValueMismatch struct {
	InvoiceValue interface{} `json:"invoice_value"`
	PoValue      interface{} `json:"po_value"`
	Issue        string      `json:"issue,omitempty"`
}

// PoComparison is the invoice-vs-PO comparison block of a payload.
type PoComparison struct {
	OverallMatch     bool                     `json:"overall_match"`
	MatchedFields    map[string]interface{}   `json:"matched_fields"`
	MismatchedFields map[string]ValueMismatch `json:"mismatched_fields"`
	LineItemDetails  []LineItemMismatch       `json:"line_item_details"`
	MissingInInvoice []string                 `json:"missing_in_invoice"`
	MissingInPo      []string                 `json:"missing_in_po"`
}

// IsMissingInInvoice reports whether the field path was present in the PO
// but absent from the invoice.
func (c *PoComparison) IsMissingInInvoice(path string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.MissingInInvoice {
		if p == path {
			return true
		}
	}
	return false
}

// IsMissingInPo reports whether the field path was present in the invoice
// but absent from the PO.
func (c *PoComparison) IsMissingInPo(path string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.MissingInPo {
		if p == path {
			return true
		}
	}
	return false
}

// Mismatch returns the cross-document mismatch for a field path, if any.
func (c *PoComparison) Mismatch(path string) (ValueMismatch, bool) {
	if c == nil || c.MismatchedFields == nil {
		return ValueMismatch{}, false
	}
	m, ok := c.MismatchedFields[path]
	return m, ok
}

// UnmarshalJSON lifts the reserved "line_item_details" key out of
// mismatched_fields: the backend nests the ordered line-item mismatch
// records there instead of a simple value pair.
func (c *PoComparison) UnmarshalJSON(data []byte) error {
	type alias struct {
		OverallMatch     bool                       `json:"overall_match"`
		MatchedFields    map[string]interface{}     `json:"matched_fields"`
		MismatchedFields map[string]json.RawMessage `json:"mismatched_fields"`
		MissingInInvoice []string                   `json:"missing_in_invoice"`
		MissingInPo      []string                   `json:"missing_in_po"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	c.OverallMatch = a.OverallMatch
	c.MatchedFields = a.MatchedFields
	c.MissingInInvoice = a.MissingInInvoice
	c.MissingInPo = a.MissingInPo
	c.MismatchedFields = make(map[string]ValueMismatch, len(a.MismatchedFields))
	c.LineItemDetails = nil

	for path, raw := range a.MismatchedFields {
		if path == LineItemDetailsKey {
			var details []LineItemMismatch
			if err := json.Unmarshal(raw, &details); err != nil {
				return fmt.Errorf("failed to unmarshal line_item_details: %w", err)
			}
			c.LineItemDetails = details
			continue
		}

		var vm ValueMismatch
		if err := json.Unmarshal(raw, &vm); err != nil {
			return fmt.Errorf("failed to unmarshal mismatch for %q: %w", path, err)
		}
		c.MismatchedFields[path] = vm
	}

	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: line-item details are
// written back under mismatched_fields.line_item_details.
func (c PoComparison) MarshalJSON() ([]byte, error) {
	mismatched := make(map[string]interface{}, len(c.MismatchedFields)+1)
	for path, vm := range c.MismatchedFields {
		mismatched[path] = vm
	}
	if len(c.LineItemDetails) > 0 {
		mismatched[LineItemDetailsKey] = c.LineItemDetails
	}

	return json.Marshal(struct {
		OverallMatch     bool                   `json:"overall_match"`
		MatchedFields    map[string]interface{} `json:"matched_fields"`
		MismatchedFields map[string]interface{} `json:"mismatched_fields"`
		MissingInInvoice []string               `json:"missing_in_invoice"`
		MissingInPo      []string               `json:"missing_in_po"`
	}{
		OverallMatch:     c.OverallMatch,
		MatchedFields:    c.MatchedFields,
		MismatchedFields: mismatched,
		MissingInInvoice: c.MissingInInvoice,
		MissingInPo:      c.MissingInPo,
	})
}

// LineItemDetailsKey is the reserved mismatched_fields key holding the
// ordered line-item mismatch records.
const LineItemDetailsKey = "line_item_details"

// ValidationPayload is the full result of one upload event, produced by
// the external validation backend and immutable thereafter.
type ValidationPayload struct {
	InvoiceNumber           string            `json:"invoice_number"`
	InvoiceValidationStatus ValidationStatus  `json:"overall_invoice_validation_status"`
	InvoiceValidationIssues map[string]string `json:"invoice_validation_issues"`
	PoComparisonStatus      ValidationStatus  `json:"overall_po_comparison_status"`
	PoComparisonResults     *PoComparison     `json:"po_comparison_results"`
	ExtractedInvoiceFields  ExtractedDocument `json:"extracted_invoice_fields"`
	ExtractedPoData         ExtractedDocument `json:"extracted_po_data"`
	SelectedChecklistOption string            `json:"selected_checklist_option"`
	SummaryMessage          string            `json:"summary_message"`
}
