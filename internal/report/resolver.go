package report

import (
	"strings"

	"github.com/finchat/invoice-validator/internal/models"
)

// Resolve walks a dotted field path against a nested document and returns
// the value at the leaf. The second return is false when any path segment
// is missing, when an intermediate segment is not a mapping, or when the
// document is nil. An explicitly empty string is present (value "", true);
// callers that merge the two for display do so deliberately.
func Resolve(doc models.ExtractedDocument, path string) (interface{}, bool) {
	if doc == nil || path == "" {
		return nil, false
	}

	var current interface{} = map[string]interface{}(doc)
	for _, segment := range strings.Split(path, ".") {
		parent, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = parent[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
