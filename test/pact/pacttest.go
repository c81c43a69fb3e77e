//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-apps-script"
	ConsumerName = "sheet-storefront"

	StateOrderSheetReady = "order sheet accepts new rows"
	StateOrderRecorded   = "order ORD1700000000000 already recorded"
)

const (
	NewOrderID      = "ORD1700000000001"
	RecordedOrderID = "ORD1700000000000"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderPayload is one order row as the storefront posts it.
func ExampleOrderPayload(orderID string) map[string]any {
	return map[string]any{
		"orderId":         orderID,
		"customerName":    "Asha",
		"customerPhone":   "9998887776",
		"customerAddress": "12 MG Road",
		"items":           "Rice (2), Salt (1)",
		"total":           220.0,
		"paymentMethod":   "COD",
		"status":          "New",
		"orderDate":       "2023-11-14",
		"deliveryDate":    "2023-11-15",
		"paymentId":       "",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
