package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoComparisonUnmarshal_LiftsLineItemDetails(t *testing.T) {
	raw := `{
		"overall_match": false,
		"matched_fields": {"supplier_name": "Acme"},
		"mismatched_fields": {
			"total_value_of_supply": {"invoice_value": 1500, "po_value": 1200},
			"line_item_details": [
				{"type": "count_mismatch", "message": "Invoice has 3 items, PO has 2"},
				{"type": "item_value_mismatch", "item_index": 1,
				 "mismatches": {"quantity": {"invoice_value": 5, "po_value": 6, "issue": "Quantity differs"}}}
			]
		},
		"missing_in_invoice": ["place_of_supply"],
		"missing_in_po": []
	}`

	var cmp PoComparison
	require.NoError(t, json.Unmarshal([]byte(raw), &cmp))

	// The reserved key never surfaces as a field mismatch
	_, reserved := cmp.MismatchedFields[LineItemDetailsKey]
	assert.False(t, reserved)

	vm, ok := cmp.Mismatch("total_value_of_supply")
	require.True(t, ok)
	assert.Equal(t, 1500.0, vm.InvoiceValue)
	assert.Equal(t, 1200.0, vm.PoValue)

	require.Len(t, cmp.LineItemDetails, 2)
	assert.Equal(t, MismatchCountMismatch, cmp.LineItemDetails[0].Type)
	assert.Equal(t, "Invoice has 3 items, PO has 2", cmp.LineItemDetails[0].Message)
	assert.Equal(t, MismatchItemValue, cmp.LineItemDetails[1].Type)
	assert.Equal(t, 1, cmp.LineItemDetails[1].ItemIndex)

	assert.True(t, cmp.IsMissingInInvoice("place_of_supply"))
	assert.False(t, cmp.IsMissingInPo("place_of_supply"))
}

func TestPoComparisonMarshal_RoundTripsDetails(t *testing.T) {
	cmp := PoComparison{
		OverallMatch: false,
		MismatchedFields: map[string]ValueMismatch{
			"invoice_date": {InvoiceValue: "12-08-2024", PoValue: "10-08-2024"},
		},
		LineItemDetails: []LineItemMismatch{
			{Type: MismatchExtraInvoiceItem, ItemIndex: 2, InvoiceItem: LineItem{"description": "Erasers"}},
		},
	}

	data, err := json.Marshal(cmp)
	require.NoError(t, err)

	var back PoComparison
	require.NoError(t, json.Unmarshal(data, &back))

	_, ok := back.Mismatch("invoice_date")
	assert.True(t, ok)
	require.Len(t, back.LineItemDetails, 1)
	assert.Equal(t, MismatchExtraInvoiceItem, back.LineItemDetails[0].Type)
	assert.Equal(t, 2, back.LineItemDetails[0].ItemIndex)
}

func TestPoComparisonNilReceivers(t *testing.T) {
	var cmp *PoComparison
	assert.False(t, cmp.IsMissingInInvoice("x"))
	assert.False(t, cmp.IsMissingInPo("x"))
	_, ok := cmp.Mismatch("x")
	assert.False(t, ok)
}

func TestLineItemMismatch_RejectsUnknownType(t *testing.T) {
	var m LineItemMismatch
	err := json.Unmarshal([]byte(`{"type": "items_reordered", "item_index": 0}`), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items_reordered")
}

func TestExtractedDocumentItems(t *testing.T) {
	tests := []struct {
		name string
		doc  ExtractedDocument
		want int
	}{
		{"nil document", nil, 0},
		{"no items key", ExtractedDocument{"invoice_number": "INV-1"}, 0},
		{"items not a list", ExtractedDocument{"items": "oops"}, 0},
		{
			"two rows",
			ExtractedDocument{"items": []interface{}{
				map[string]interface{}{"description": "Pens"},
				map[string]interface{}{"description": "Pencils"},
			}},
			2,
		},
		{
			"malformed entry degrades to empty row",
			ExtractedDocument{"items": []interface{}{
				map[string]interface{}{"description": "Pens"},
				"not-a-mapping",
			}},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.doc.Items(), tt.want)
		})
	}
}

func TestValidationStatus(t *testing.T) {
	assert.True(t, StatusAccepted.IsAccepted())
	assert.False(t, StatusRejected.IsAccepted())
	assert.False(t, StatusNoPo.IsAccepted())
}
