package report

import (
	"testing"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(descriptions ...string) []models.LineItem {
	out := make([]models.LineItem, len(descriptions))
	for i, d := range descriptions {
		out[i] = models.LineItem{"description": d, "quantity": float64(i + 1)}
	}
	return out
}

func TestReconcileItems_FlagsOnlyTheIndexedRow(t *testing.T) {
	details := []models.LineItemMismatch{
		{
			Type:      models.MismatchItemValue,
			ItemIndex: 1,
			Mismatches: map[string]models.ValueMismatch{
				"quantity":   {InvoiceValue: 2.0, PoValue: 3.0, Issue: "Quantity differs"},
				"unit_price": {InvoiceValue: 10.0, PoValue: 12.0},
			},
		},
	}

	records := ReconcileItems(items("pens", "pencils", "erasers"), details)
	require.Len(t, records, 3)

	assert.False(t, records[0].HasDiscrepancies)
	assert.False(t, records[2].HasDiscrepancies)

	assert.True(t, records[1].HasDiscrepancies)
	assert.Len(t, records[1].Mismatches, 2)
	assert.Contains(t, records[1].Mismatches, "quantity")
	assert.Contains(t, records[1].Mismatches, "unit_price")
}

func TestReconcileItems_PreservesDocumentOrder(t *testing.T) {
	records := ReconcileItems(items("c", "a", "b"), nil)
	require.Len(t, records, 3)
	for i, want := range []string{"c", "a", "b"} {
		assert.Equal(t, i, records[i].Index)
		desc, _ := records[i].Item.Get("description")
		assert.Equal(t, want, desc)
	}
}

func TestReconcileItems_EmptyInputs(t *testing.T) {
	assert.Nil(t, ReconcileItems(nil, nil))
	assert.Nil(t, ReconcileItems([]models.LineItem{}, nil))

	// A count mismatch alone still renders the rows that exist
	details := []models.LineItemMismatch{
		{Type: models.MismatchCountMismatch, Message: "Invoice has 3 items, PO has 2"},
	}
	records := ReconcileItems(items("x", "y", "z"), details)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.False(t, rec.HasDiscrepancies, "count mismatch must not flag rows")
	}
}

func TestMismatchNotices(t *testing.T) {
	details := []models.LineItemMismatch{
		{Type: models.MismatchCountMismatch, Message: "Invoice has 3 items, PO has 2"},
		{Type: models.MismatchExtraInvoiceItem, ItemIndex: 2},
		{Type: models.MismatchExtraPoItem, ItemIndex: 4},
		{Type: models.MismatchItemValue, ItemIndex: 0,
			Mismatches: map[string]models.ValueMismatch{"quantity": {}}},
	}

	notices := MismatchNotices(details)
	require.Len(t, notices, 3, "item_value_mismatch is row-level, not a notice")
	assert.Equal(t, "Invoice has 3 items, PO has 2", notices[0])
	assert.Equal(t, "Invoice has an extra line item at row 3", notices[1])
	assert.Equal(t, "PO has an extra line item at row 5", notices[2])
}

func TestMismatchNotices_Empty(t *testing.T) {
	assert.Empty(t, MismatchNotices(nil))
}
