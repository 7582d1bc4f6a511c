package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"total_value_of_supply", "Total Value Of Supply"},
		{"hsn_sac_code", "Hsn Sac Code"},
		{"invoice_number", "Invoice Number"},
		{"supplier.address.city", "Supplier Address City"},
		{"items.item_2.quantity", "Items Item 2 Quantity"},
		{"already Title", "Already Title"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanizeLabel(tt.path))
		})
	}
}
