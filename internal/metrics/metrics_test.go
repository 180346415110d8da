package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(OutcomeSuccess)
	c.RecordLogin(OutcomeFailure)
	c.RecordLogin(OutcomeFailure)
	c.RecordRefresh(OutcomeSuccess)
	c.RecordGate(OutcomeFailure)
	c.RecordHTTPStatus(http.StatusUnauthorized)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.login.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.login.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refresh.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gate.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpStatus.WithLabelValues("401")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(OutcomeSuccess)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "videotube_auth_login_total"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("x")))
}
