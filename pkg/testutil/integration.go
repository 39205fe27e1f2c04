package testutil

import (
	"os"
	"testing"
)

// RequireIntegration skips the test unless INTEGRATION_TESTS=1. Integration
// tests start containers and need a reachable Docker daemon.
func RequireIntegration(t *testing.T) {
	t.Helper()

	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests")
	}
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}
