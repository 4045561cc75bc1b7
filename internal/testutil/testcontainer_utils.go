// Package testutil starts shared database containers for integration tests.
package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// requireContainer fails the test when the shared container could not be
// started.
func requireContainer(t *testing.T, name string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("start %s container: %v", name, err)
	}
}

// skipWithoutProvider skips container tests in short mode and when no
// container runtime is reachable.
func skipWithoutProvider(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}
