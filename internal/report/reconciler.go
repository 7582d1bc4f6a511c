package report

import (
	"fmt"

	"github.com/finchat/invoice-validator/internal/models"
)

// LineItemRecord is one renderable line-item row. Index is the zero-based
// position in the source document; rows keep strict document order and
// index is the only alignment key against the other document.
type LineItemRecord struct {
	Index            int
	Item             models.LineItem
	HasDiscrepancies bool
	Mismatches       map[string]models.ValueMismatch
}

// ReconcileItems annotates each item with its mismatch status from the
// comparison details. Only item_value_mismatch entries attach to a row;
// count mismatches and extra items become standalone notices (see
// MismatchNotices). An empty or nil item slice yields an empty result,
// never an error, and a count_mismatch entry does not suppress the rows
// that do exist.
func ReconcileItems(items []models.LineItem, details []models.LineItemMismatch) []LineItemRecord {
	if len(items) == 0 {
		return nil
	}

	byIndex := make(map[int]map[string]models.ValueMismatch)
	for _, d := range details {
		if d.Type == models.MismatchItemValue {
			byIndex[d.ItemIndex] = d.Mismatches
		}
	}

	records := make([]LineItemRecord, len(items))
	for i, item := range items {
		rec := LineItemRecord{Index: i, Item: item}
		if mismatches, ok := byIndex[i]; ok {
			rec.HasDiscrepancies = true
			rec.Mismatches = mismatches
		}
		records[i] = rec
	}
	return records
}

// MismatchNotices flattens count-mismatch and extra-item entries into
// human-readable notices, in detail order. item_value_mismatch entries are
// row-level and produce no notice here.
func MismatchNotices(details []models.LineItemMismatch) []string {
	var notices []string
	for _, d := range details {
		switch d.Type {
		case models.MismatchCountMismatch:
			notices = append(notices, d.Message)
		case models.MismatchExtraInvoiceItem:
			notices = append(notices, fmt.Sprintf("Invoice has an extra line item at row %d", d.ItemIndex+1))
		case models.MismatchExtraPoItem:
			notices = append(notices, fmt.Sprintf("PO has an extra line item at row %d", d.ItemIndex+1))
		}
	}
	return notices
}
