package httpapi

import (
	"net/url"
	"strconv"

	"github.com/heimsight/heimsight/internal/query"
)

// buildSelect assembles a query.Select from REST query parameters,
// ANDing together whichever of start_time/end_time/service/level/
// contains/name/type were supplied. It lets the REST filter surface
// (spec.md §6) reuse the same executors the SQL-like query language
// uses, instead of a second hand-rolled filtering path.
func buildSelect(table string, values url.Values) *query.Select {
	sel := &query.Select{From: table}

	var conds []query.Expr
	if v := values.Get("start_time"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			conds = append(conds, &query.Condition{Field: timeColumn(table), Op: query.OpGtEq, Literal: query.NumberLit(n)})
		}
	}
	if v := values.Get("end_time"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			conds = append(conds, &query.Condition{Field: timeColumn(table), Op: query.OpLtEq, Literal: query.NumberLit(n)})
		}
	}
	if v := values.Get("service"); v != "" {
		conds = append(conds, &query.Condition{Field: "service", Op: query.OpEq, Literal: query.StringLit(v)})
	}
	if v := values.Get("level"); v != "" {
		conds = append(conds, &query.Condition{Field: "level", Op: query.OpEq, Literal: query.StringLit(v)})
	}
	if v := values.Get("contains"); v != "" {
		conds = append(conds, &query.Condition{Field: "message", Op: query.OpContains, Literal: query.StringLit(v)})
	}
	if v := values.Get("name"); v != "" {
		conds = append(conds, &query.Condition{Field: "name", Op: query.OpEq, Literal: query.StringLit(v)})
	}
	if v := values.Get("type"); v != "" {
		conds = append(conds, &query.Condition{Field: "metric_type", Op: query.OpEq, Literal: query.StringLit(v)})
	}
	if v := values.Get("status"); v != "" {
		conds = append(conds, &query.Condition{Field: "status_code", Op: query.OpEq, Literal: query.StringLit(v)})
	}
	if v := values.Get("min_duration_ns"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			conds = append(conds, &query.Condition{Field: "duration_ns", Op: query.OpGtEq, Literal: query.NumberLit(n)})
		}
	}
	if v := values.Get("max_duration_ns"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			conds = append(conds, &query.Condition{Field: "duration_ns", Op: query.OpLtEq, Literal: query.NumberLit(n)})
		}
	}
	for key, vals := range values {
		const prefix = "label."
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && len(vals) > 0 {
			conds = append(conds, &query.Condition{Field: key[len(prefix):], Op: query.OpEq, Literal: query.StringLit(vals[0])})
		}
	}

	sel.Where = foldAnd(conds)

	if v := values.Get("limit"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			sel.Limit = &n
		}
	}
	if v := values.Get("offset"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			sel.Offset = &n
		}
	}
	return sel
}

func timeColumn(table string) string {
	if table == "spans" {
		return "start_time"
	}
	return "timestamp"
}

func foldAnd(conds []query.Expr) query.Expr {
	if len(conds) == 0 {
		return nil
	}
	expr := conds[0]
	for _, c := range conds[1:] {
		expr = &query.Combined{Left: expr, Operator: query.LogicAnd, Right: c}
	}
	return expr
}
