package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

type Tx interface {
	Execer
	Getter
}

// ListFilter is the shared query contract for collection endpoints:
// equality filters, free-text search, a whitelisted sort key and paging.
type ListFilter struct {
	Status string
	Method string
	Search string
	SortBy string
	Limit  int
	Offset int
}

func (f ListFilter) limit() int {
	if f.Limit <= 0 || f.Limit > 500 {
		return 50
	}
	return f.Limit
}

func (f ListFilter) offset() int {
	if f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// sortClause maps a requested sort key onto a fixed ordering: date and
// amount descending, status ascending. Anything else falls back to date.
func sortClause(sortBy string) string {
	switch sortBy {
	case "amount":
		return "amount_minor DESC, created_at DESC"
	case "status":
		return "status ASC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}

func derefStringPtr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
