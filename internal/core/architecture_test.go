package core_test

import (
	"strings"
	"testing"

	"hotelcore/testutil"
)

func TestCoreDoesNotImportStorageAdapters(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden, "the core reaches storage only through domain.DocumentStore")
}

func TestCoreMetricsStayBehindRecorderInterface(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return path == "expvar" || strings.HasPrefix(path, "github.com/prometheus/")
	}, "metrics exporters live in internal/metrics behind core.MetricsRecorder")
}
