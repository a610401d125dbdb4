// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Package query provides SQL query building utilities for the database package.
//
// Placeholders are numbered ($1, $2, ...) so the same statement runs on both
// DuckDB and PostgreSQL.
package query

import (
	"strconv"
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddIn("owner_id", []string{"a", "b"})
//	wb.AddEquals("post_id", id)
//	where, args := wb.BuildWithPrefix()
//	// WHERE owner_id IN ($1, $2) AND post_id = $3
//	limit := wb.Arg(10) // "$4"
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// Arg binds v and returns its placeholder. Use it for values outside the
// WHERE clause (LIMIT, OFFSET) so numbering stays consistent.
func (wb *WhereBuilder) Arg(v interface{}) string {
	wb.args = append(wb.args, v)
	return "$" + strconv.Itoa(len(wb.args))
}

// AddClause adds a raw condition. Each "?" in clause is replaced, in order,
// by the placeholder of the matching argument.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	var sb strings.Builder
	next := 0
	for _, r := range clause {
		if r == '?' && next < len(args) {
			sb.WriteString(wb.Arg(args[next]))
			next++
			continue
		}
		sb.WriteRune(r)
	}
	wb.clauses = append(wb.clauses, sb.String())
	return wb
}

// AddEquals adds "column = $n".
func (wb *WhereBuilder) AddEquals(column string, v interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, column+" = "+wb.Arg(v))
	return wb
}

// AddIn adds "column IN ($n, ...)". An empty list adds a condition that
// matches no rows.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}
	wb.clauses = append(wb.clauses, column+" IN ("+wb.InList(values)+")")
	return wb
}

// InList binds values and returns the comma-separated placeholder list
// without parentheses.
func (wb *WhereBuilder) InList(values []string) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = wb.Arg(v)
	}
	return strings.Join(placeholders, ", ")
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", args) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", wb.args
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Args returns every bound argument, including those bound with Arg.
func (wb *WhereBuilder) Args() []interface{} {
	return wb.args
}
