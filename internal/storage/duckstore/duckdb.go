// Package duckstore is the embedded-DuckDB columnar backend (spec.md
// §4.2's "column store"), grounded on the teacher's internal/storage
// package: same sql.DB-over-go-duckdb connection shape, generalized
// from a fixed five-table OTLP schema to the raw + aggregate-tier
// tables internal/model and internal/aggregation describe.
package duckstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/heimsight/heimsight/internal/aggregation"
)

// Storage wraps the DuckDB connection pool and implements
// storage.LogStore, storage.MetricStore, storage.TraceStore and
// storage.SQLStore.
type Storage struct {
	db *sql.DB
}

// New opens (or creates) the DuckDB database at dbPath and initializes
// the raw and aggregate-tier schemas. An empty dbPath opens an
// in-memory database, used by tests.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		logsSchema, logsIndexes,
		metricsSchema, metricsIndexes,
		spansSchema, spansIndexes,
	}
	for _, tier := range aggregation.Topology {
		statements = append(statements, aggregateTableDDL(tier.TargetTable))
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// aggregateTableDDL picks the column shape for an aggregate table by
// its name prefix, mirroring internal/query.Catalog's per-table column
// sets exactly.
func aggregateTableDDL(table string) string {
	switch {
	case hasPrefix(table, "metrics_"):
		return fmt.Sprintf(metricsAggSchema, table)
	case hasPrefix(table, "logs_"):
		return fmt.Sprintf(logsAggSchema, table)
	case hasPrefix(table, "spans_"):
		return fmt.Sprintf(spansAggSchema, table)
	case hasPrefix(table, "traces_"):
		return fmt.Sprintf(tracesAggSchema, table)
	default:
		panic("storage: unknown aggregate table " + table)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Health checks the database connection.
func (s *Storage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB for janitor/aggregation queries that
// need raw SQL beyond the LogStore/MetricStore/TraceStore contracts.
func (s *Storage) DB() *sql.DB {
	return s.db
}
