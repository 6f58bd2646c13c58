package repository

import "strings"

type rowScanner interface {
	Scan(dest ...any) error
}

// sortDirection normalizes a client supplied order, defaulting to DESC.
func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
