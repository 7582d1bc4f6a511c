package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixturePayload = `{
	"invoice_number": "INV-FIX",
	"overall_invoice_validation_status": "Accepted",
	"overall_po_comparison_status": "N/A (No PO Provided)",
	"extracted_invoice_fields": {"invoice_number": "INV-FIX"},
	"selected_checklist_option": "gst_tax_invoice",
	"summary_message": "Fixture payload."
}`

func TestFixtureClient_LoadsFromRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.json"), []byte(fixturePayload), 0644))

	client := NewFixtureClient(dir, zap.NewNop())
	result, err := client.Validate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.ResultID, "fixture results get generated ids")
	assert.Equal(t, "INV-FIX", result.Payload.InvoiceNumber)
	assert.Equal(t, models.StatusAccepted, result.Payload.InvoiceValidationStatus)
}

func TestFixtureClient_PrefersDayDirectory(t *testing.T) {
	dir := t.TempDir()
	day := time.Now().Format("02-01-2006")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, day), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.json"),
		[]byte(fixturePayload), 0644))

	dayPayload := `{"invoice_number": "INV-TODAY", "summary_message": "Today's fixture."}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, day, "payload.json"),
		[]byte(dayPayload), 0644))

	client := NewFixtureClient(dir, zap.NewNop())
	result, err := client.Validate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-TODAY", result.Payload.InvoiceNumber)
}

func TestFixtureClient_MissingFixture(t *testing.T) {
	client := NewFixtureClient(t.TempDir(), zap.NewNop())
	_, err := client.Validate(context.Background(), testRequest())
	assert.Error(t, err)
}

func TestFixtureClient_MalformedFixture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payload.json"), []byte("{not json"), 0644))

	client := NewFixtureClient(dir, zap.NewNop())
	_, err := client.Validate(context.Background(), testRequest())
	assert.Error(t, err)
}
