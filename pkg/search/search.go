// Package search builds the comma separated, AND-combined record filters used by list endpoints.
package search

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLimit caps every list response.
const DefaultLimit = 50

const escapeChar = "!"

// SplitTerms splits on commas, trims, and drops empty terms.
func SplitTerms(query string) []string {
	parts := strings.Split(query, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// EscapeLike escapes LIKE wildcards with '!', which every supported driver accepts in ESCAPE.
func EscapeLike(term string) string {
	r := strings.NewReplacer(escapeChar, escapeChar+escapeChar, "%", escapeChar+"%", "_", escapeChar+"_")
	return r.Replace(term)
}

// ContainsPattern lower-cases term and wraps it for a substring match.
func ContainsPattern(term string) string {
	return "%" + EscapeLike(strings.ToLower(term)) + "%"
}

// PrefixPattern lower-cases term for a starts-with match.
func PrefixPattern(term string) string {
	return EscapeLike(strings.ToLower(term)) + "%"
}

func likeAny(columns []string) string {
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '" + escapeChar + "'"
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

func equalAny(columns []string) string {
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = "LOWER(" + col + ") = ?"
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

func repeat(v interface{}, n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Terms returns a scope where every term must match at least one column.
// Rows matching the first term exactly come first, then prefix matches, then the rest;
// ties are broken by tiebreak (for example "id DESC").
func Terms(columns []string, terms []string, tiebreak string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 0 || len(terms) == 0 {
			if tiebreak != "" {
				db = db.Order(tiebreak)
			}
			return db
		}

		clauseSQL := likeAny(columns)
		for _, term := range terms {
			db = db.Where(clauseSQL, repeat(ContainsPattern(term), len(columns))...)
		}

		first := terms[0]
		vars := append(repeat(strings.ToLower(first), len(columns)), repeat(PrefixPattern(first), len(columns))...)
		order := "CASE WHEN " + equalAny(columns) + " THEN 0 WHEN " + likeAny(columns) + " THEN 1 ELSE 2 END"
		if tiebreak != "" {
			order += ", " + tiebreak
		}
		return db.Order(clause.OrderBy{Expression: clause.Expr{SQL: order, Vars: vars, WithoutParentheses: true}})
	}
}
