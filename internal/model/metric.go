package model

// MetricType classifies a Metric's shape.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

func (t MetricType) Valid() bool {
	switch t {
	case MetricTypeCounter, MetricTypeGauge, MetricTypeHistogram:
		return true
	default:
		return false
	}
}

// Metric is the canonical internal representation of a single data point.
// For histograms, Value carries the scalar sum and BucketBounds/BucketCounts
// carry the parallel histogram arrays (spec.md §3 invariant (d)).
type Metric struct {
	Timestamp    int64             `json:"timestamp"`
	Name         string            `json:"name"`
	MetricType   MetricType        `json:"metric_type"`
	Value        float64           `json:"value"`
	BucketBounds []float64         `json:"bucket_bounds,omitempty"`
	BucketCounts []uint64          `json:"bucket_counts,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
	Service      string            `json:"service"`
}

// Validate checks spec.md §3 invariant (d) and basic schema requirements.
func (m *Metric) Validate() error {
	if m.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !m.MetricType.Valid() {
		return &ValidationError{Field: "metric_type", Reason: "unknown type " + string(m.MetricType)}
	}
	if m.MetricType == MetricTypeHistogram {
		if len(m.BucketBounds) != 0 || len(m.BucketCounts) != 0 {
			if len(m.BucketBounds)+1 != len(m.BucketCounts) {
				return &ValidationError{Field: "bucket_counts", Reason: "must have len(bucket_bounds)+1 entries"}
			}
		}
	}
	return nil
}
