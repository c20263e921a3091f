// Package grpcapi exposes the three OTLP collector Export RPCs over
// gRPC, sharing the internal/otlp convert pipeline and Backend
// abstraction with the HTTP transport in internal/server/httpapi.
package grpcapi

import (
	"context"
	"log"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetricsv1 "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortracev1 "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/heimsight/heimsight/internal/otlp"
	"github.com/heimsight/heimsight/internal/storage"
)

// Backend is the subset of httpapi.Backend the collector services need.
// Declared independently rather than imported so grpcapi does not take
// a dependency on the HTTP transport package.
type Backend interface {
	Logs() storage.LogStore
	Metrics() storage.MetricStore
	Traces() storage.TraceStore
}

// New builds a *grpc.Server with all three OTLP collector services
// registered against backend.
func New(backend Backend) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor),
	)

	collectorlogsv1.RegisterLogsServiceServer(srv, &logsServer{backend: backend})
	collectormetricsv1.RegisterMetricsServiceServer(srv, &metricsServer{backend: backend})
	collectortracev1.RegisterTraceServiceServer(srv, &traceServer{backend: backend})

	return srv
}

// recoveryInterceptor mirrors httpapi's recoveryMiddleware: a panic in a
// handler becomes codes.Internal instead of killing the process.
func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("grpcapi: panic in %s: %v", info.FullMethod, r)
			err = status.Errorf(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

type logsServer struct {
	collectorlogsv1.UnimplementedLogsServiceServer
	backend Backend
}

func (s *logsServer) Export(ctx context.Context, req *collectorlogsv1.ExportLogsServiceRequest) (*collectorlogsv1.ExportLogsServiceResponse, error) {
	records, result := otlp.ConvertLogs(req)
	if len(records) > 0 {
		if err := s.backend.Logs().InsertLogs(ctx, records); err != nil {
			return nil, storageStatus(err)
		}
	}

	resp := &collectorlogsv1.ExportLogsServiceResponse{}
	if result.HasRejections() {
		resp.PartialSuccess = &collectorlogsv1.ExportLogsPartialSuccess{
			RejectedLogRecords: int64(result.Rejected),
			ErrorMessage:       result.ErrorMessage(),
		}
	}
	return resp, nil
}

type metricsServer struct {
	collectormetricsv1.UnimplementedMetricsServiceServer
	backend Backend
}

func (s *metricsServer) Export(ctx context.Context, req *collectormetricsv1.ExportMetricsServiceRequest) (*collectormetricsv1.ExportMetricsServiceResponse, error) {
	metrics, result := otlp.ConvertMetrics(req)
	if len(metrics) > 0 {
		if err := s.backend.Metrics().InsertMetrics(ctx, metrics); err != nil {
			return nil, storageStatus(err)
		}
	}

	resp := &collectormetricsv1.ExportMetricsServiceResponse{}
	if result.HasRejections() {
		resp.PartialSuccess = &collectormetricsv1.ExportMetricsPartialSuccess{
			RejectedDataPoints: int64(result.Rejected),
			ErrorMessage:       result.ErrorMessage(),
		}
	}
	return resp, nil
}

type traceServer struct {
	collectortracev1.UnimplementedTraceServiceServer
	backend Backend
}

func (s *traceServer) Export(ctx context.Context, req *collectortracev1.ExportTraceServiceRequest) (*collectortracev1.ExportTraceServiceResponse, error) {
	spans, result := otlp.ConvertTraces(req)
	if len(spans) > 0 {
		if err := s.backend.Traces().InsertSpans(ctx, spans); err != nil {
			return nil, storageStatus(err)
		}
	}

	resp := &collectortracev1.ExportTraceServiceResponse{}
	if result.HasRejections() {
		resp.PartialSuccess = &collectortracev1.ExportTracePartialSuccess{
			RejectedSpans: int64(result.Rejected),
			ErrorMessage:  result.ErrorMessage(),
		}
	}
	return resp, nil
}
