package duckstore

// Raw-table schemas, adapted from the teacher's OTLP-proto-shaped
// spans/logs/metrics tables (schema.go) into model-driven tables with
// nanosecond BIGINT timestamps instead of TIMESTAMP columns, so TTL
// sweeps and query pushdown can compare directly against the int64
// timestamps internal/model carries.

const logsSchema = `
CREATE TABLE IF NOT EXISTS logs (
    id VARCHAR NOT NULL,
    timestamp BIGINT NOT NULL,
    level VARCHAR NOT NULL,
    message VARCHAR NOT NULL,
    normalized_message VARCHAR,
    service VARCHAR NOT NULL,
    trace_id VARCHAR,
    span_id VARCHAR,
    attrs MAP(VARCHAR, VARCHAR),
    ingested_at TIMESTAMP NOT NULL
);
`

const logsIndexes = `
CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs(timestamp);
CREATE INDEX IF NOT EXISTS idx_logs_service ON logs(service);
CREATE INDEX IF NOT EXISTS idx_logs_trace_id ON logs(trace_id);
`

const metricsSchema = `
CREATE TABLE IF NOT EXISTS metrics (
    id VARCHAR NOT NULL,
    timestamp BIGINT NOT NULL,
    name VARCHAR NOT NULL,
    metric_type VARCHAR NOT NULL,
    value DOUBLE NOT NULL,
    bucket_bounds DOUBLE[],
    bucket_counts UBIGINT[],
    labels MAP(VARCHAR, VARCHAR),
    service VARCHAR NOT NULL,
    ingested_at TIMESTAMP NOT NULL
);
`

const metricsIndexes = `
CREATE INDEX IF NOT EXISTS idx_metrics_ts ON metrics(timestamp);
CREATE INDEX IF NOT EXISTS idx_metrics_name ON metrics(name);
CREATE INDEX IF NOT EXISTS idx_metrics_service ON metrics(service);
`

const spansSchema = `
CREATE TABLE IF NOT EXISTS spans (
    trace_id VARCHAR NOT NULL,
    span_id VARCHAR NOT NULL,
    parent_span_id VARCHAR,
    start_time BIGINT NOT NULL,
    end_time BIGINT NOT NULL,
    duration_ns BIGINT NOT NULL,
    name VARCHAR NOT NULL,
    operation VARCHAR NOT NULL,
    service VARCHAR NOT NULL,
    span_kind VARCHAR NOT NULL,
    status_code VARCHAR NOT NULL,
    status_message VARCHAR,
    attrs MAP(VARCHAR, VARCHAR),
    resource_attrs MAP(VARCHAR, VARCHAR),
    events_json VARCHAR,
    links_json VARCHAR,
    ingested_at TIMESTAMP NOT NULL
);
`

const spansIndexes = `
CREATE INDEX IF NOT EXISTS idx_spans_trace_id ON spans(trace_id);
CREATE INDEX IF NOT EXISTS idx_spans_start_time ON spans(start_time);
CREATE INDEX IF NOT EXISTS idx_spans_service ON spans(service);
`

// Aggregate-tier schemas, one per row of internal/aggregation.Topology.
// Column sets mirror internal/query.Catalog exactly so the pushdown
// renderer's allowlist matches what actually exists.

const metricsAggSchema = `
CREATE TABLE IF NOT EXISTS %s (
    bucket BIGINT NOT NULL,
    service VARCHAR NOT NULL,
    name VARCHAR NOT NULL,
    metric_type VARCHAR NOT NULL,
    count BIGINT NOT NULL,
    sum DOUBLE NOT NULL,
    min DOUBLE NOT NULL,
    max DOUBLE NOT NULL,
    avg DOUBLE NOT NULL
);
`

const logsAggSchema = `
CREATE TABLE IF NOT EXISTS %s (
    bucket BIGINT NOT NULL,
    service VARCHAR NOT NULL,
    level VARCHAR NOT NULL,
    normalized_message VARCHAR NOT NULL,
    sample_message VARCHAR NOT NULL,
    count BIGINT NOT NULL
);
`

const spansAggSchema = `
CREATE TABLE IF NOT EXISTS %s (
    bucket BIGINT NOT NULL,
    service VARCHAR NOT NULL,
    operation VARCHAR NOT NULL,
    span_kind VARCHAR NOT NULL,
    status_code VARCHAR NOT NULL,
    span_count BIGINT NOT NULL,
    avg_duration_ns DOUBLE NOT NULL,
    min_duration_ns BIGINT NOT NULL,
    max_duration_ns BIGINT NOT NULL,
    p50 DOUBLE NOT NULL,
    p95 DOUBLE NOT NULL,
    p99 DOUBLE NOT NULL
);
`

const tracesAggSchema = `
CREATE TABLE IF NOT EXISTS %s (
    bucket BIGINT NOT NULL,
    service VARCHAR NOT NULL,
    trace_count BIGINT NOT NULL,
    avg_duration_ns DOUBLE NOT NULL,
    p50 DOUBLE NOT NULL,
    p95 DOUBLE NOT NULL,
    p99 DOUBLE NOT NULL
);
`
