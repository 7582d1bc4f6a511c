package assistant

import (
	"fmt"
	"strings"

	"github.com/finchat/invoice-validator/internal/report"
)

const systemPrompt = `You are an assistant embedded in an invoice validation chat. ` +
	`Answer the user's follow-up questions about the validation report provided in context. ` +
	`Be concise and factual; only reference fields, values, and discrepancies present in the context. ` +
	`If the context does not contain the answer, say so instead of guessing.`

// reportContext flattens a rendered report into a textual context block
// for the model: summary, field statuses, and discrepancies. Raw
// line-item tables stay out of the prompt.
func reportContext(rpt *report.Report) string {
	if rpt == nil {
		return "No validation report is attached to this conversation."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Invoice number: %s\n", rpt.Summary.InvoiceNumber)
	fmt.Fprintf(&b, "Checklist: %s\n", rpt.Summary.ChecklistLabel)
	fmt.Fprintf(&b, "Invoice validation status: %s\n", rpt.Summary.InvoiceStatus)
	fmt.Fprintf(&b, "PO comparison status: %s\n", rpt.Summary.PoComparisonStatus)
	fmt.Fprintf(&b, "Summary: %s\n", rpt.Summary.Message)

	b.WriteString("\nInvoice fields:\n")
	for _, row := range rpt.InvoiceFields {
		status := "valid"
		if !row.Status.Valid {
			status = "invalid (" + row.Status.Reason + ")"
		}
		fmt.Fprintf(&b, "- %s: %s [%s]\n", row.Label, row.Value, status)
	}

	if len(rpt.Discrepancies) > 0 {
		b.WriteString("\nDiscrepancies:\n")
		for _, d := range rpt.Discrepancies {
			switch d.Kind {
			case report.DiscrepancyFieldMismatch:
				fmt.Fprintf(&b, "- %s: invoice %s vs PO %s\n", d.Label, d.InvoiceValue, d.PoValue)
			default:
				fmt.Fprintf(&b, "- %s: %s\n", d.Label, d.Message)
			}
		}
	} else {
		b.WriteString("\nNo discrepancies were found.\n")
	}

	if !rpt.HasPoData {
		b.WriteString("\nNo purchase order was provided for comparison.\n")
	}

	return b.String()
}
