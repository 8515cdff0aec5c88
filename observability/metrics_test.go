package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/admin/patients", "200"))
	ObserveRequest("GET", "/api/admin/patients", 200, 10*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/admin/patients", "200"))
	assert.Equal(t, before+1, after)

	ObserveRequest("GET", "", 404, time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")), 1.0)
}

func TestObserveSession(t *testing.T) {
	correct := testutil.ToFloat64(goalOutcomes.WithLabelValues("correct"))
	incorrect := testutil.ToFloat64(goalOutcomes.WithLabelValues("incorrect"))
	sessions := testutil.ToFloat64(sessionsRecorded.WithLabelValues(ModeAtomic))

	ObserveSession(ModeAtomic, []bool{true, true, false})

	assert.Equal(t, sessions+1, testutil.ToFloat64(sessionsRecorded.WithLabelValues(ModeAtomic)))
	assert.Equal(t, correct+2, testutil.ToFloat64(goalOutcomes.WithLabelValues("correct")))
	assert.Equal(t, incorrect+1, testutil.ToFloat64(goalOutcomes.WithLabelValues("incorrect")))
}

func TestHandler(t *testing.T) {
	ObservePublishFailure()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "aba_tracker_events_publish_failures_total")
}
