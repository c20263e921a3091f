// Package query implements the SQL-like filter language: lexing,
// parsing to an AST, and both native (row-walk) and pushdown (rendered
// SQL) evaluation.
package query

import "fmt"

// Op is a comparison operator in a WHERE clause.
type Op string

const (
	OpEq         Op = "="
	OpNotEq      Op = "!="
	OpLt         Op = "<"
	OpLtEq       Op = "<="
	OpGt         Op = ">"
	OpGtEq       Op = ">="
	OpContains   Op = "CONTAINS"
	OpStartsWith Op = "STARTS WITH"
	OpEndsWith   Op = "ENDS WITH"
)

// LogicOp combines two Expr nodes.
type LogicOp string

const (
	LogicAnd LogicOp = "AND"
	LogicOr  LogicOp = "OR"
)

// Literal is a WHERE clause operand: a string, a number, or NULL.
type Literal struct {
	Str     *string
	Num     *float64
	IsNull  bool
}

func StringLit(s string) Literal  { return Literal{Str: &s} }
func NumberLit(n float64) Literal { return Literal{Num: &n} }
func NullLit() Literal            { return Literal{IsNull: true} }

func (l Literal) String() string {
	switch {
	case l.IsNull:
		return "NULL"
	case l.Str != nil:
		return "'" + escapeQuote(*l.Str) + "'"
	case l.Num != nil:
		return formatNumber(*l.Num)
	default:
		return "NULL"
	}
}

func escapeQuote(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// Expr is a node in the WHERE clause tree: a leaf Condition, a NOT,
// a Combined AND/OR, or a Grouped (parenthesized) sub-expression.
type Expr interface {
	String() string
}

// Condition is a leaf comparison: field OP literal.
type Condition struct {
	Field   string
	Op      Op
	Literal Literal
}

func (c *Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Literal)
}

// Not negates an inner expression.
type Not struct {
	Inner Expr
}

func (n *Not) String() string { return "NOT " + n.Inner.String() }

// Combined joins two expressions with AND/OR.
type Combined struct {
	Left     Expr
	Operator LogicOp
	Right    Expr
}

func (c *Combined) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Operator, c.Right)
}

// Grouped is a parenthesized sub-expression, preserved so String()
// round-trips (Testable Property 5) without changing precedence.
type Grouped struct {
	Inner Expr
}

func (g *Grouped) String() string { return "(" + g.Inner.String() + ")" }

// SortOrder for ORDER BY.
type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

// OrderBy is the ORDER BY clause.
type OrderBy struct {
	Column string
	Order  SortOrder
}

// Select is the parsed query AST (spec.md §3's Query AST, §4.3's grammar).
type Select struct {
	From    string
	Where   Expr
	OrderBy *OrderBy
	Limit   *uint64
	Offset  *uint64
}

// String renders the AST back to query syntax. Used for Testable
// Property 5 (parse/format round-trip) and echoed in query responses.
func (s *Select) String() string {
	out := "SELECT * FROM " + s.From
	if s.Where != nil {
		out += " WHERE " + s.Where.String()
	}
	if s.OrderBy != nil {
		out += fmt.Sprintf(" ORDER BY %s %s", s.OrderBy.Column, s.OrderBy.Order)
	}
	if s.Limit != nil {
		out += fmt.Sprintf(" LIMIT %d", *s.Limit)
	}
	if s.Offset != nil {
		out += fmt.Sprintf(" OFFSET %d", *s.Offset)
	}
	return out
}
