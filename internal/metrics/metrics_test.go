package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestObserversSafeBeforeInit ensures observe helpers no-op until Init runs.
func TestObserversSafeBeforeInit(t *testing.T) {
	ObserveSubmission("success", 60)
	ObserveSubmissionRetry()
	ObserveItem("done")
	ObserveCatalogPage("ok")
	IncActiveWorkers()
	DecActiveWorkers()
	ObservePacingDelay(time.Second)
}

func TestInitAndHandlerExposeCollectors(t *testing.T) {
	Init()
	Init() // idempotent

	ObserveSubmission("success", 60)
	ObserveSubmission("failure", 0)
	ObserveSubmissionRetry()
	ObserveItem("done")
	ObserveCatalogPage("ok")
	IncActiveWorkers()
	ObservePacingDelay(250 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, name := range []string{
		"studypacer_submissions_total",
		"studypacer_submitted_seconds_total",
		"studypacer_items_total",
		"studypacer_catalog_pages_total",
		"studypacer_active_workers",
		"studypacer_pacing_delay_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}
}
