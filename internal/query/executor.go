package query

import "strings"

// DefaultRowLimit is the hard ceiling applied when a query carries no
// explicit LIMIT (spec.md §5, Testable Property 6).
const DefaultRowLimit = 10000

// Row is a generic field-indexable record, implemented by model types'
// adapters so the executor can stay storage-agnostic.
type Row interface {
	// Field returns the value for a column name and whether it exists.
	// Values are string, float64, int64, bool, nil, or []string for
	// multi-valued attribute lookups — the evaluator only ever compares
	// against string/float64/nil.
	Field(name string) (any, bool)
}

// EvalNative evaluates expr against a single row, implementing the
// native execution mode's semantics (spec.md §4.3): CONTAINS is
// case-insensitive substring, STARTS WITH/ENDS WITH are case-sensitive,
// comparisons coerce like JavaScript (numeric vs numeric, string vs
// string lexicographic, mixed types false for every operator except
// != which is true, NULL handled by = and != only).
func EvalNative(expr Expr, row Row) bool {
	if expr == nil {
		return true
	}
	switch e := expr.(type) {
	case *Condition:
		return evalCondition(e, row)
	case *Not:
		return !EvalNative(e.Inner, row)
	case *Combined:
		left := EvalNative(e.Left, row)
		right := EvalNative(e.Right, row)
		if e.Operator == LogicAnd {
			return left && right
		}
		return left || right
	case *Grouped:
		return EvalNative(e.Inner, row)
	default:
		return false
	}
}

func evalCondition(c *Condition, row Row) bool {
	val, ok := row.Field(c.Field)
	if !ok {
		val = nil
	}

	if c.Literal.IsNull {
		switch c.Op {
		case OpEq:
			return val == nil
		case OpNotEq:
			return val != nil
		default:
			return false
		}
	}

	if val == nil {
		return c.Op == OpNotEq
	}

	switch c.Op {
	case OpContains:
		vs, vok := asString(val)
		ls, lok := literalString(c.Literal)
		if !vok || !lok {
			return false
		}
		return strings.Contains(strings.ToLower(vs), strings.ToLower(ls))
	case OpStartsWith:
		vs, vok := asString(val)
		ls, lok := literalString(c.Literal)
		if !vok || !lok {
			return false
		}
		return strings.HasPrefix(vs, ls)
	case OpEndsWith:
		vs, vok := asString(val)
		ls, lok := literalString(c.Literal)
		if !vok || !lok {
			return false
		}
		return strings.HasSuffix(vs, ls)
	default:
		return compareValues(val, c.Literal, c.Op)
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func literalString(l Literal) (string, bool) {
	if l.Str == nil {
		return "", false
	}
	return *l.Str, true
}

// compareValues implements the JavaScript-like coercion spec.md §4.3
// mandates: numbers compare numerically, strings lexicographically,
// mixed types compare false for every operator except != which is
// true (comparison against NULL is handled by the caller before
// reaching here).
func compareValues(val any, lit Literal, op Op) bool {
	if lit.Num != nil {
		vf, ok := numericValue(val)
		if !ok {
			return op == OpNotEq
		}
		return compareOrdered(vf, *lit.Num, op)
	}
	if lit.Str != nil {
		vs, ok := asString(val)
		if !ok {
			return op == OpNotEq
		}
		return compareStrings(vs, *lit.Str, op)
	}
	return false
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func compareOrdered[T interface {
	float64 | string
}](a, b T, op Op) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNotEq:
		return a != b
	case OpLt:
		return a < b
	case OpLtEq:
		return a <= b
	case OpGt:
		return a > b
	case OpGtEq:
		return a >= b
	default:
		return false
	}
}

func compareStrings(a, b string, op Op) bool {
	return compareOrdered(a, b, op)
}

// ApplyOrderLimitOffset sorts rows by the AST's ORDER BY clause (if any)
// and slices them by OFFSET/LIMIT, enforcing DefaultRowLimit when no
// explicit LIMIT is set.
func ApplyOrderLimitOffset[T Row](rows []T, sel *Select, less func(a, b T, col string) bool) []T {
	if sel.OrderBy != nil && less != nil {
		sortRows(rows, sel.OrderBy, less)
	}

	offset := 0
	if sel.Offset != nil {
		offset = int(*sel.Offset)
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]

	limit := DefaultRowLimit
	if sel.Limit != nil {
		limit = int(*sel.Limit)
	}
	if limit > len(rows) {
		limit = len(rows)
	}
	return rows[:limit]
}

func sortRows[T Row](rows []T, ob *OrderBy, less func(a, b T, col string) bool) {
	// simple insertion sort keeps this generic without pulling in
	// sort.Slice's reflection-based comparator for a handful of rows;
	// callers with large result sets should prefer pushdown mode.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0; j-- {
			a, b := rows[j], rows[j-1]
			if ob.Order == Desc {
				a, b = b, a
			}
			if less(a, b, ob.Column) {
				rows[j], rows[j-1] = rows[j-1], rows[j]
			} else {
				break
			}
		}
	}
}
