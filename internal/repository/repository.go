// Package repository implements the domain stores on PostgreSQL.
// Repositories are constructed over a database.Queryer so the service layer
// can bind them either to the shared pool or to an open transaction.
package repository

import "database/sql"

// nullable converts an optional id to its SQL representation. Empty strings
// become NULL so UUID foreign keys stay valid.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullable(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
