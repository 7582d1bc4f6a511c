package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRequest() UploadRequest {
	return UploadRequest{
		SessionID:       "session-1",
		ChecklistOption: "gst_tax_invoice",
		InvoiceName:     "invoice.pdf",
		InvoiceContent:  []byte("%PDF-1.4 data"),
	}
}

func TestHTTPClientValidate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/validate", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "session-1", r.FormValue("session_id"))
		assert.Equal(t, "gst_tax_invoice", r.FormValue("checklist_option"))
		assert.Equal(t, "false", r.FormValue("has_po"))

		file, header, err := r.FormFile("invoice")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "invoice.pdf", header.Filename)

		_, _, err = r.FormFile("po")
		assert.Error(t, err, "no PO part without a PO upload")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result_id": "result-1",
			"payload": {
				"invoice_number": "INV-1",
				"overall_invoice_validation_status": "Accepted",
				"overall_po_comparison_status": "N/A (No PO Provided)",
				"extracted_invoice_fields": {"invoice_number": "INV-1"},
				"selected_checklist_option": "gst_tax_invoice",
				"summary_message": "Invoice passed all checklist validations."
			}
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	result, err := client.Validate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "result-1", result.ResultID)
	assert.Equal(t, "INV-1", result.Payload.InvoiceNumber)
}

func TestHTTPClientValidate_SendsPoPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "true", r.FormValue("has_po"))

		_, header, err := r.FormFile("po")
		require.NoError(t, err)
		assert.Equal(t, "po.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result_id": "result-2", "payload": {"invoice_number": "INV-2"}}`))
	}))
	defer srv.Close()

	req := testRequest()
	req.HasPo = true
	req.PoName = "po.pdf"
	req.PoContent = []byte("%PDF-1.4 po")

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	result, err := client.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "result-2", result.ResultID)
}

func TestHTTPClientValidate_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "extraction pipeline overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.Validate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "extraction pipeline overloaded")
}

func TestHTTPClientValidate_MissingPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result_id": "result-3"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.Validate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no payload")
}

func TestHTTPClientValidate_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.Validate(ctx, testRequest())
	assert.Error(t, err)
}
