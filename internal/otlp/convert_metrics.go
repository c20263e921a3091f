package otlp

import (
	"fmt"

	collectormetricsv1 "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	metricsv1 "go.opentelemetry.io/proto/otlp/metrics/v1"

	"github.com/heimsight/heimsight/internal/model"
)

// ConvertMetrics expands each OTLP Metric into one canonical Metric per
// data point (spec.md §4.1). exponential_histogram and summary metrics
// have no canonical representation and are rejected.
func ConvertMetrics(req *collectormetricsv1.ExportMetricsServiceRequest) ([]*model.Metric, *Result) {
	result := &Result{}
	var out []*model.Metric

	for _, rm := range req.GetResourceMetrics() {
		var resourceAttrs map[string]string
		if rm.Resource != nil {
			resourceAttrs = flattenAttributes(rm.Resource.Attributes)
		}
		svc := serviceName(resourceAttrs)

		for _, sm := range rm.GetScopeMetrics() {
			for _, m := range sm.GetMetrics() {
				metrics, rejected := convertMetric(m, resourceAttrs, svc)
				out = append(out, metrics...)
				result.Accepted += len(metrics)
				for _, reason := range rejected {
					result.reject(reason)
				}
			}
		}
	}
	return out, result
}

func convertMetric(m *metricsv1.Metric, resourceAttrs map[string]string, svc string) ([]*model.Metric, []string) {
	switch data := m.Data.(type) {
	case *metricsv1.Metric_Gauge:
		return convertNumberPoints(m.Name, data.Gauge.DataPoints, model.MetricTypeGauge, resourceAttrs, svc)
	case *metricsv1.Metric_Sum:
		mt := model.MetricTypeGauge
		if data.Sum.IsMonotonic {
			mt = model.MetricTypeCounter
		}
		return convertNumberPoints(m.Name, data.Sum.DataPoints, mt, resourceAttrs, svc)
	case *metricsv1.Metric_Histogram:
		return convertHistogramPoints(m.Name, data.Histogram.DataPoints, resourceAttrs, svc)
	case *metricsv1.Metric_ExponentialHistogram:
		n := len(data.ExponentialHistogram.DataPoints)
		reasons := make([]string, n)
		for i := range reasons {
			reasons[i] = fmt.Sprintf("metric %s: exponential_histogram unsupported", m.Name)
		}
		return nil, reasons
	case *metricsv1.Metric_Summary:
		n := len(data.Summary.DataPoints)
		reasons := make([]string, n)
		for i := range reasons {
			reasons[i] = fmt.Sprintf("metric %s: summary unsupported", m.Name)
		}
		return nil, reasons
	default:
		return nil, []string{fmt.Sprintf("metric %s: unknown data type", m.Name)}
	}
}

func convertNumberPoints(name string, points []*metricsv1.NumberDataPoint, mt model.MetricType, resourceAttrs map[string]string, svc string) ([]*model.Metric, []string) {
	out := make([]*model.Metric, 0, len(points))
	var rejected []string
	for _, dp := range points {
		var value float64
		switch v := dp.Value.(type) {
		case *metricsv1.NumberDataPoint_AsDouble:
			value = v.AsDouble
		case *metricsv1.NumberDataPoint_AsInt:
			value = float64(v.AsInt)
		}
		metric := &model.Metric{
			Timestamp:  int64(dp.GetTimeUnixNano()),
			Name:       name,
			MetricType: mt,
			Value:      value,
			Labels:     mergeAttributes(resourceAttrs, flattenAttributes(dp.GetAttributes())),
			Service:    svc,
		}
		if err := metric.Validate(); err != nil {
			rejected = append(rejected, fmt.Sprintf("metric %s: %v", name, err))
			continue
		}
		out = append(out, metric)
	}
	return out, rejected
}

func convertHistogramPoints(name string, points []*metricsv1.HistogramDataPoint, resourceAttrs map[string]string, svc string) ([]*model.Metric, []string) {
	out := make([]*model.Metric, 0, len(points))
	var rejected []string
	for _, dp := range points {
		counts := make([]uint64, len(dp.BucketCounts))
		copy(counts, dp.BucketCounts)

		metric := &model.Metric{
			Timestamp:    int64(dp.GetTimeUnixNano()),
			Name:         name,
			MetricType:   model.MetricTypeHistogram,
			Value:        dp.GetSum(),
			BucketBounds: append([]float64(nil), dp.ExplicitBounds...),
			BucketCounts: counts,
			Labels:       mergeAttributes(resourceAttrs, flattenAttributes(dp.GetAttributes())),
			Service:      svc,
		}
		if err := metric.Validate(); err != nil {
			rejected = append(rejected, fmt.Sprintf("metric %s: %v", name, err))
			continue
		}
		out = append(out, metric)
	}
	return out, rejected
}
