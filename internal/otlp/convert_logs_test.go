package otlp

import (
	"testing"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	logsv1 "go.opentelemetry.io/proto/otlp/logs/v1"
	resourcev1 "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/stretchr/testify/require"
)

func strAttr(k, v string) *commonv1.KeyValue {
	return &commonv1.KeyValue{Key: k, Value: &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: v}}}
}

func TestConvertLogs_AcceptsValidRecord(t *testing.T) {
	req := &collectorlogsv1.ExportLogsServiceRequest{
		ResourceLogs: []*logsv1.ResourceLogs{
			{
				Resource: &resourcev1.Resource{Attributes: []*commonv1.KeyValue{strAttr("service.name", "checkout")}},
				ScopeLogs: []*logsv1.ScopeLogs{
					{LogRecords: []*logsv1.LogRecord{
						{
							TimeUnixNano:  1700000000000000000,
							SeverityText:  "error",
							Body:          &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: "payment failed"}},
							SeverityNumber: 17,
						},
					}},
				},
			},
		},
	}

	records, result := ConvertLogs(req)
	require.Len(t, records, 1)
	require.Equal(t, 1, result.Accepted)
	require.Equal(t, 0, result.Rejected)
	require.Equal(t, "checkout", records[0].Service)
	require.Equal(t, "payment failed", records[0].Message)
	require.EqualValues(t, "error", records[0].Level)
}

func TestConvertLogs_RejectsEmptyBodyButKeepsBatchGoing(t *testing.T) {
	req := &collectorlogsv1.ExportLogsServiceRequest{
		ResourceLogs: []*logsv1.ResourceLogs{
			{
				Resource: &resourcev1.Resource{Attributes: []*commonv1.KeyValue{strAttr("service.name", "checkout")}},
				ScopeLogs: []*logsv1.ScopeLogs{
					{LogRecords: []*logsv1.LogRecord{
						{TimeUnixNano: 1, Body: nil},
						{TimeUnixNano: 2, Body: &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: "ok"}}},
					}},
				},
			},
		},
	}

	records, result := ConvertLogs(req)
	require.Len(t, records, 1)
	require.Equal(t, 1, result.Accepted)
	require.Equal(t, 1, result.Rejected)
	require.True(t, result.HasRejections())
}

func TestConvertLogs_DefaultsServiceToUnknown(t *testing.T) {
	req := &collectorlogsv1.ExportLogsServiceRequest{
		ResourceLogs: []*logsv1.ResourceLogs{
			{
				ScopeLogs: []*logsv1.ScopeLogs{
					{LogRecords: []*logsv1.LogRecord{
						{TimeUnixNano: 1, Body: &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: "hi"}}},
					}},
				},
			},
		},
	}
	records, _ := ConvertLogs(req)
	require.Len(t, records, 1)
	require.Equal(t, "unknown", records[0].Service)
}

func TestSeverityToLevel_Buckets(t *testing.T) {
	require.Equal(t, "trace", string(severityToLevel(1)))
	require.Equal(t, "debug", string(severityToLevel(5)))
	require.Equal(t, "info", string(severityToLevel(9)))
	require.Equal(t, "warn", string(severityToLevel(13)))
	require.Equal(t, "error", string(severityToLevel(17)))
	require.Equal(t, "fatal", string(severityToLevel(21)))
	require.Equal(t, "info", string(severityToLevel(0)))
}
