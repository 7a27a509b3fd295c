package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates statement text together with its positional
// arguments so placeholders are numbered in the order they are written.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

// expr writes a fragment where each ? consumes the next argument. Extra ?
// characters are written verbatim.
func (w *sqlWriter) expr(fragment string, args []any) {
	for i := 0; i < len(fragment); i++ {
		if fragment[i] == '?' && len(args) > 0 {
			w.bind(args[0])
			args = args[1:]
			continue
		}
		w.WriteByte(fragment[i])
	}
}

func (w *sqlWriter) join(conditions []Condition, sep string) {
	for i, cond := range conditions {
		if i > 0 {
			w.WriteString(sep)
		}
		cond(w)
	}
}

func (w *sqlWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.WriteString(" WHERE ")
	w.join(conditions, " AND ")
}

// Condition renders one boolean SQL term.
type Condition func(w *sqlWriter)

func compare(column, op string, value any) Condition {
	return func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(op)
		w.bind(value)
	}
}

func Eq(column string, value any) Condition { return compare(column, " = ", value) }
func Gte(column string, value any) Condition { return compare(column, " >= ", value) }
func Lte(column string, value any) Condition { return compare(column, " <= ", value) }

// In matches any of values; an empty list matches nothing.
func In(column string, values []any) Condition {
	return func(w *sqlWriter) {
		if len(values) == 0 {
			w.WriteString("FALSE")
			return
		}
		w.WriteString(column)
		w.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteString(")")
	}
}

func IsNull(column string) Condition {
	return func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" IS NULL")
	}
}

// Expr is a raw fragment with ? placeholders.
func Expr(fragment string, args ...any) Condition {
	return func(w *sqlWriter) { w.expr(fragment, args) }
}

// Or joins conditions with OR inside parentheses.
func Or(conditions ...Condition) Condition {
	return func(w *sqlWriter) {
		if len(conditions) == 0 {
			w.WriteString("TRUE")
			return
		}
		w.WriteString("(")
		w.join(conditions, " OR ")
		w.WriteString(")")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches term as a case-insensitive substring of any column. LIKE
// wildcards in term are escaped.
func Search(term string, columns ...string) Condition {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	terms := make([]Condition, 0, len(columns))
	for _, column := range columns {
		terms = append(terms, Expr(column+" ILIKE ?", pattern))
	}
	return Or(terms...)
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
	offset  int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) Offset(offset int) *SelectBuilder {
	b.offset = offset
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("select: no columns")
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("select: no table")
	}

	w := &sqlWriter{}
	fmt.Fprintf(w, "SELECT %s FROM %s", strings.Join(b.columns, ", "), b.table)
	w.where(b.where)
	if len(b.orderBy) > 0 {
		w.WriteString(" ORDER BY ")
		w.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(w, " LIMIT %d", b.limit)
	}
	if b.offset > 0 {
		fmt.Fprintf(w, " OFFSET %d", b.offset)
	}
	return w.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

// Values appends one row.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix is appended after VALUES, typically ON CONFLICT or RETURNING.
func (b *InsertBuilder) Suffix(fragment string) *InsertBuilder {
	b.suffix = strings.TrimSpace(fragment)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("insert: no table")
	case len(b.columns) == 0:
		return "", nil, fmt.Errorf("insert: no columns")
	case len(b.rows) == 0:
		return "", nil, fmt.Errorf("insert: no rows")
	}

	w := &sqlWriter{args: make([]any, 0, len(b.rows)*len(b.columns))}
	fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES ", b.table, strings.Join(b.columns, ", "))
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert: row %d has %d values for %d columns", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString("(")
		for j, value := range row {
			if j > 0 {
				w.WriteString(", ")
			}
			w.bind(value)
		}
		w.WriteString(")")
	}
	if b.suffix != "" {
		w.WriteString(" ")
		w.WriteString(b.suffix)
	}
	return w.String(), w.args, nil
}

type UpdateBuilder struct {
	table  string
	sets   []Condition
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

// SetExpr assigns a raw expression, e.g. a counter increment.
func (b *UpdateBuilder) SetExpr(column, fragment string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, Expr(column+" = "+fragment, args...))
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Suffix(fragment string) *UpdateBuilder {
	b.suffix = strings.TrimSpace(fragment)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, fmt.Errorf("update: no table")
	case len(b.sets) == 0:
		return "", nil, fmt.Errorf("update: nothing to set")
	}

	w := &sqlWriter{}
	fmt.Fprintf(w, "UPDATE %s SET ", b.table)
	w.join(b.sets, ", ")
	w.where(b.where)
	if b.suffix != "" {
		w.WriteString(" ")
		w.WriteString(b.suffix)
	}
	return w.String(), w.args, nil
}
