package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMutation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewMetrics(registry)
	require.NoError(t, err)

	m.ObserveMutation("bathroom", "create", nil)
	m.ObserveMutation("bathroom", "create", nil)
	m.ObserveMutation("dental", "delete", errors.New("not found"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.mutationsTotal.WithLabelValues("bathroom", "create", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mutationsTotal.WithLabelValues("dental", "delete", "error")))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewMetrics(registry)
	require.NoError(t, err)
	_, err = NewMetrics(registry)
	assert.Error(t, err)
}

func findFamily(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not found", name)
	return nil
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := NewMetrics(registry)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/bathroom/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/bathroom/1", "/api/bathroom/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := registry.Gather()
	require.NoError(t, err)
	family := findFamily(t, families, "lifestats_http_request_duration_seconds")

	counts := map[string]uint64{}
	for _, metric := range family.GetMetric() {
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		counts[labels["route"]+" "+labels["status"]] = metric.GetHistogram().GetSampleCount()
	}
	assert.Equal(t, uint64(2), counts["/api/bathroom/:id 200"])
	assert.Equal(t, uint64(1), counts["unmatched 404"])
}

func TestHandlerExposesMetrics(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.ObserveMutation("dental", "create", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `lifestats_event_mutations_total{kind="dental",op="create",result="ok"} 1`))
	assert.Contains(t, body, "go_goroutines")
}
