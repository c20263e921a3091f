package query

import (
	"fmt"
	"strings"
)

// UnknownTableError/UnknownColumnError surface allow-list rejections
// from RenderSQL as request-level errors (spec.md §7).
type UnknownTableError struct{ Table string }

func (e *UnknownTableError) Error() string { return "unknown table '" + e.Table + "'" }

type UnknownColumnError struct{ Table, Column string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column '%s' on table '%s'", e.Column, e.Table)
}

// RenderSQL translates a parsed Select into a parameterized DuckDB SQL
// statement plus its positional arguments (spec.md §4.3's pushdown
// mode). CONTAINS lowercases both operands to match native mode's
// case-insensitivity (spec.md §9 Open Question (a)); STARTS WITH/ENDS
// WITH stay case-sensitive on both sides, same as native mode.
func RenderSQL(sel *Select) (string, []any, error) {
	if !KnownTable(sel.From) {
		return "", nil, &UnknownTableError{Table: sel.From}
	}

	var sb strings.Builder
	var args []any

	fmt.Fprintf(&sb, "SELECT * FROM %s", sel.From)

	if sel.Where != nil {
		sb.WriteString(" WHERE ")
		if err := renderExpr(&sb, &args, sel.From, sel.Where); err != nil {
			return "", nil, err
		}
	}

	if sel.OrderBy != nil {
		if !KnownColumn(sel.From, sel.OrderBy.Column) {
			return "", nil, &UnknownColumnError{Table: sel.From, Column: sel.OrderBy.Column}
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", sel.OrderBy.Column, sel.OrderBy.Order)
	}

	limit := DefaultRowLimit
	if sel.Limit != nil {
		limit = int(*sel.Limit)
		if limit > DefaultRowLimit {
			limit = DefaultRowLimit
		}
	}
	fmt.Fprintf(&sb, " LIMIT %d", limit)

	if sel.Offset != nil {
		fmt.Fprintf(&sb, " OFFSET %d", *sel.Offset)
	}

	return sb.String(), args, nil
}

// RenderCountSQL translates sel into a COUNT(*) statement over the same
// WHERE clause RenderSQL would use, dropping ORDER BY/LIMIT/OFFSET so it
// reports the full match count spec.md §4.2's query contract requires
// regardless of pagination.
func RenderCountSQL(sel *Select) (string, []any, error) {
	if !KnownTable(sel.From) {
		return "", nil, &UnknownTableError{Table: sel.From}
	}

	var sb strings.Builder
	var args []any

	fmt.Fprintf(&sb, "SELECT count(*) FROM %s", sel.From)

	if sel.Where != nil {
		sb.WriteString(" WHERE ")
		if err := renderExpr(&sb, &args, sel.From, sel.Where); err != nil {
			return "", nil, err
		}
	}

	return sb.String(), args, nil
}

func renderExpr(sb *strings.Builder, args *[]any, table string, expr Expr) error {
	switch e := expr.(type) {
	case *Condition:
		return renderCondition(sb, args, table, e)
	case *Not:
		sb.WriteString("NOT ")
		return renderExpr(sb, args, table, e.Inner)
	case *Combined:
		if err := renderExpr(sb, args, table, e.Left); err != nil {
			return err
		}
		sb.WriteString(" " + string(e.Operator) + " ")
		return renderExpr(sb, args, table, e.Right)
	case *Grouped:
		sb.WriteString("(")
		if err := renderExpr(sb, args, table, e.Inner); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil
	default:
		return fmt.Errorf("unsupported expression node %T", expr)
	}
}

func renderCondition(sb *strings.Builder, args *[]any, table string, c *Condition) error {
	colExpr, err := columnExpr(table, c.Field, args)
	if err != nil {
		return err
	}

	if c.Literal.IsNull {
		switch c.Op {
		case OpEq:
			fmt.Fprintf(sb, "%s IS NULL", colExpr)
		case OpNotEq:
			fmt.Fprintf(sb, "%s IS NOT NULL", colExpr)
		default:
			return fmt.Errorf("operator %s cannot be used with NULL", c.Op)
		}
		return nil
	}

	switch c.Op {
	case OpContains:
		fmt.Fprintf(sb, "position(lower(%s), lower(?)) > 0", colExpr)
		*args = append(*args, literalArg(c.Literal))
	case OpStartsWith:
		fmt.Fprintf(sb, "starts_with(%s, ?)", colExpr)
		*args = append(*args, literalArg(c.Literal))
	case OpEndsWith:
		fmt.Fprintf(sb, "ends_with(%s, ?)", colExpr)
		*args = append(*args, literalArg(c.Literal))
	default:
		fmt.Fprintf(sb, "%s %s ?", colExpr, sqlOp(c.Op))
		*args = append(*args, literalArg(c.Literal))
	}
	return nil
}

// columnExpr resolves a condition's field to a renderable SQL
// expression: the bare column name when it's in Catalog's allow-list,
// or a map lookup against MapColumn[table] (binding the field name as
// a positional argument) when the table has one. Neither path lets
// unsanitized identifiers reach the query text.
func columnExpr(table, field string, args *[]any) (string, error) {
	if KnownColumn(table, field) {
		return field, nil
	}
	if mapCol, ok := MapColumn[table]; ok {
		*args = append(*args, field)
		return fmt.Sprintf("map_extract(%s, ?)[1]", mapCol), nil
	}
	return "", &UnknownColumnError{Table: table, Column: field}
}

func sqlOp(op Op) string {
	if op == OpNotEq {
		return "<>"
	}
	return string(op)
}

func literalArg(l Literal) any {
	switch {
	case l.Str != nil:
		return *l.Str
	case l.Num != nil:
		return *l.Num
	default:
		return nil
	}
}
