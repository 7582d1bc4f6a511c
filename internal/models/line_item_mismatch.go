package models

import (
	"encoding/json"
	"fmt"
)

// MismatchType tags a LineItemMismatch record
type MismatchType string

const (
	MismatchCountMismatch    MismatchType = "count_mismatch"
	MismatchExtraInvoiceItem MismatchType = "extra_invoice_item"
	MismatchExtraPoItem      MismatchType = "extra_po_item"
	MismatchItemValue        MismatchType = "item_value_mismatch"
)

var validMismatchTypes = map[MismatchType]bool{
	MismatchCountMismatch:    true,
	MismatchExtraInvoiceItem: true,
	MismatchExtraPoItem:      true,
	MismatchItemValue:        true,
}

// IsValid returns true if the mismatch type is a known variant
func (t MismatchType) IsValid() bool {
	return validMismatchTypes[t]
}

// LineItemMismatch is one record of the line_item_details sequence. Which
// fields are meaningful depends on Type:
//
//	count_mismatch      — Message
//	extra_invoice_item  — ItemIndex, InvoiceItem
//	extra_po_item       — ItemIndex, PoItem
//	item_value_mismatch — ItemIndex, Mismatches
//
// ItemIndex is zero-based over the shorter-aligned sequence; indices past
// the shorter document's length arrive as extra_* variants.
type LineItemMismatch struct {
	Type        MismatchType             `json:"type"`
	Message     string                   `json:"message,omitempty"`
	ItemIndex   int                      `json:"item_index"`
	InvoiceItem LineItem                 `json:"invoice_item,omitempty"`
	PoItem      LineItem                 `json:"po_item,omitempty"`
	Mismatches  map[string]ValueMismatch `json:"mismatches,omitempty"`
}

// UnmarshalJSON rejects unknown type tags so a new backend variant fails
// loudly instead of being silently dropped.
func (m *LineItemMismatch) UnmarshalJSON(data []byte) error {
	type alias LineItemMismatch
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if !MismatchType(a.Type).IsValid() {
		return fmt.Errorf("unknown line item mismatch type: %q", a.Type)
	}
	*m = LineItemMismatch(a)
	return nil
}
