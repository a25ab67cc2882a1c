package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCounterVecExposition(t *testing.T) {
	t.Parallel()
	c := NewCounterVec("x_total", "help text", []string{"route"})
	c.Inc("/b")
	c.Add(2, "/a")
	c.Add(-5, "/a")
	c.Inc(`/q"x`)

	var buf bytes.Buffer
	if err := c.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	want := "# HELP x_total help text\n# TYPE x_total counter\n" +
		"x_total{route=\"/a\"} 2\n" +
		"x_total{route=\"/b\"} 1\n" +
		"x_total{route=\"/q\\\"x\"} 1\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
	if c.Value("/a") != 2 {
		t.Fatalf("negative add should be ignored")
	}
}

func TestHistogramIsCumulative(t *testing.T) {
	t.Parallel()
	h := NewHistogramVec("lat", "latency", []string{"m"}, []float64{1, 0.1})
	h.Observe(0.0625, "GET")
	h.Observe(0.5, "GET")
	h.Observe(3, "GET")

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, line := range []string{
		`lat_bucket{m="GET",le="0.1"} 1`,
		`lat_bucket{m="GET",le="1"} 2`,
		`lat_bucket{m="GET",le="+Inf"} 3`,
		`lat_sum{m="GET"} 3.5625`,
		`lat_count{m="GET"} 3`,
	} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("missing %q in:\n%s", line, out)
		}
	}
}

func TestUnlabelledCounterWritesZero(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := NewCounter("c", "h").WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "c 0\n") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.ObserveAPI("GET", "/api/health", "200", time.Millisecond)
	m.ObserveWorkout(30, 10, 2)
	m.ApiInflightInc()
	m.SSEClientsDec()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil metrics: %v", err)
	}
}

func TestObserveAPICountsServerErrors(t *testing.T) {
	t.Parallel()
	m := newMetrics()
	m.ObserveAPI("POST", "/api/workouts/complete", "500", time.Millisecond)
	m.ObserveAPI("GET", "/api/dashboard", "200", time.Millisecond)
	m.ObserveAPI("", "", "", 0)
	if got := m.apiReqTotal.Value(); got != 3 {
		t.Fatalf("total %v", got)
	}
	if got := m.apiReqError.Value(); got != 1 {
		t.Fatalf("errors %v", got)
	}
	if got := m.apiRequests.Value("UNKNOWN", "unknown", "0"); got != 1 {
		t.Fatalf("defaulted labels %v", got)
	}
	m.ObserveWorkout(20, 15, 3)
	if got := m.workouts.Value("30"); got != 1 {
		t.Fatalf("duration bucket %v", got)
	}
}
