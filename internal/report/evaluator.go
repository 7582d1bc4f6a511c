package report

import "github.com/finchat/invoice-validator/internal/models"

// Reasons attached to PO-derived invalid statuses. Issue-map reasons come
// through verbatim from the backend.
const (
	ReasonMissingInInvoice = "Missing in invoice per PO comparison"
	ReasonMissingInPo      = "Missing in PO"
)

// FieldStatus is the evaluated checklist status of a single field, plus an
// optional cross-document annotation. A field can be checklist-valid and
// still disagree with the PO; both facts are carried separately.
type FieldStatus struct {
	Valid      bool
	Reason     string
	PoMismatch *models.ValueMismatch
}

// EvaluateField decides a field's status. Priority order, first match wins:
//
//  1. an entry in the issues map marks the field invalid with that message
//  2. invoice-side fields listed in missing_in_invoice are invalid
//  3. PO-side fields listed in missing_in_po are invalid
//  4. otherwise the field is valid
//
// Invoice-side fields additionally get the PO mismatch annotation when the
// comparison recorded one, regardless of the checklist outcome.
func EvaluateField(path string, issues map[string]string, poCmp *models.PoComparison, isPoField bool) FieldStatus {
	status := FieldStatus{Valid: true}

	reason, hasIssue := issues[path]
	switch {
	case hasIssue:
		status.Valid = false
		status.Reason = reason
	case !isPoField && poCmp.IsMissingInInvoice(path):
		status.Valid = false
		status.Reason = ReasonMissingInInvoice
	case isPoField && poCmp.IsMissingInPo(path):
		status.Valid = false
		status.Reason = ReasonMissingInPo
	}

	if !isPoField {
		if mismatch, ok := poCmp.Mismatch(path); ok {
			status.PoMismatch = &mismatch
		}
	}

	return status
}
