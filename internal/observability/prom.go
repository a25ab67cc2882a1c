package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Minimal Prometheus text exposition. Series are written sorted by label
// set so scrapes are stable.

type metricKind string

const (
	kindCounter   metricKind = "counter"
	kindGauge     metricKind = "gauge"
	kindHistogram metricKind = "histogram"
)

func writeHeader(w io.Writer, name, help string, kind metricKind) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

// valueVec backs both counter and gauge families.
type valueVec struct {
	name   string
	help   string
	kind   metricKind
	labels []string

	mu     sync.RWMutex
	series map[string]float64
}

func newValueVec(name, help string, kind metricKind, labels []string) *valueVec {
	return &valueVec{name: name, help: help, kind: kind, labels: labels, series: map[string]float64{}}
}

func (v *valueVec) update(fn func(float64) float64, values []string) {
	key := labelString(v.labels, values)
	v.mu.Lock()
	v.series[key] = fn(v.series[key])
	v.mu.Unlock()
}

func (v *valueVec) get(values []string) float64 {
	key := labelString(v.labels, values)
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.series[key]
}

func (v *valueVec) WritePrometheus(w io.Writer) error {
	if err := writeHeader(w, v.name, v.help, v.kind); err != nil {
		return err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.labels) == 0 && len(v.series) == 0 {
		_, err := fmt.Fprintf(w, "%s 0\n", v.name)
		return err
	}
	for _, k := range sortedKeys(v.series) {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", v.name, k, formatFloat(v.series[k])); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ v *valueVec }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{v: newValueVec(name, help, kindCounter, labels)}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add ignores negative deltas; counters only go up.
func (c *CounterVec) Add(d float64, values ...string) {
	if c == nil || d < 0 {
		return
	}
	c.v.update(func(cur float64) float64 { return cur + d }, values)
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.v.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.v.WritePrometheus(w)
}

type Counter struct{ v *valueVec }

func NewCounter(name, help string) *Counter {
	return &Counter{v: newValueVec(name, help, kindCounter, nil)}
}

func (c *Counter) Inc() { c.Add(1) }

func (c *Counter) Add(d float64) {
	if c == nil || d < 0 {
		return
	}
	c.v.update(func(cur float64) float64 { return cur + d }, nil)
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.v.get(nil)
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.v.WritePrometheus(w)
}

type Gauge struct{ v *valueVec }

func NewGauge(name, help string) *Gauge {
	return &Gauge{v: newValueVec(name, help, kindGauge, nil)}
}

func (g *Gauge) Set(val float64) {
	if g == nil {
		return
	}
	g.v.update(func(float64) float64 { return val }, nil)
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(d float64) {
	if g == nil {
		return
	}
	g.v.update(func(cur float64) float64 { return cur + d }, nil)
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.v.get(nil)
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.v.WritePrometheus(w)
}

type GaugeVec struct{ v *valueVec }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{v: newValueVec(name, help, kindGauge, labels)}
}

func (g *GaugeVec) Set(val float64, values ...string) {
	if g == nil {
		return
	}
	g.v.update(func(float64) float64 { return val }, values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.v.WritePrometheus(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.Mutex
	series map[string]*histogram
}

// histogram keeps non-cumulative bucket counts; cumulation happens on write.
type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &HistogramVec{name: name, help: help, labels: labels, buckets: b, series: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(val float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist := h.series[key]
	if hist == nil {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.series[key] = hist
	}
	hist.sum += val
	hist.total++
	if i := sort.SearchFloat64s(h.buckets, val); i < len(h.buckets) {
		hist.counts[i]++
	}
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, kindHistogram); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hist := h.series[k]
		var cum uint64
		for i, b := range h.buckets {
			cum += hist.counts[i]
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, formatFloat(b)), cum); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %s\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), hist.total,
			h.name, k, formatFloat(hist.sum),
			h.name, k, hist.total); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// labelString renders {a="x",b="y"}; missing values become "unknown".
func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) {
			val = values[i]
		}
		parts[i] = name + `="` + escapeLabel(val) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }

func withLe(labels, le string) string {
	pair := `le="` + escapeLabel(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
