package pagination

import (
	"context"
	"fmt"

	"github.com/phrazzld/tasktracker-api/internal/domain"
)

// MaxPageSize bounds the first argument of a page request.
const MaxPageSize = 100

// ErrInvalidPageSize is returned when first is outside 1..MaxPageSize.
var ErrInvalidPageSize = fmt.Errorf("%w: page size must be between 1 and %d", domain.ErrValidation, MaxPageSize)

// Edge wraps a node with its cursor.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// PageInfo describes the position of a page within the full listing.
// HasPreviousPage only reports that the request carried an after cursor.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// Connection is one forward page of a listing.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

// FetchFunc returns up to limit rows whose key is greater than afterID,
// ordered by ascending key. An afterID of zero starts from the beginning.
type FetchFunc[T any] func(ctx context.Context, afterID int64, limit int) ([]T, error)

// Paginator builds connections over a keyset listing.
type Paginator[T any] struct {
	fetch FetchFunc[T]
	key   func(T) int64
}

// NewPaginator creates a Paginator. key extracts the sort key of a row.
func NewPaginator[T any](fetch FetchFunc[T], key func(T) int64) *Paginator[T] {
	return &Paginator[T]{fetch: fetch, key: key}
}

// Page returns the first rows after the after cursor, or from the start
// when after is nil. One extra row is fetched so HasNextPage is exact.
func (p *Paginator[T]) Page(ctx context.Context, first int, after *string) (*Connection[T], error) {
	if first < 1 || first > MaxPageSize {
		return nil, ErrInvalidPageSize
	}

	var afterID int64
	if after != nil {
		id, err := DecodeCursor(*after)
		if err != nil {
			return nil, err
		}
		afterID = id
	}

	rows, err := p.fetch(ctx, afterID, first+1)
	if err != nil {
		return nil, err
	}

	hasNext := len(rows) > first
	if hasNext {
		rows = rows[:first]
	}

	conn := &Connection[T]{
		Edges: make([]Edge[T], 0, len(rows)),
		PageInfo: PageInfo{
			HasNextPage:     hasNext,
			HasPreviousPage: after != nil,
		},
	}
	for _, row := range rows {
		conn.Edges = append(conn.Edges, Edge[T]{Cursor: EncodeCursor(p.key(row)), Node: row})
	}

	if n := len(conn.Edges); n > 0 {
		start, end := conn.Edges[0].Cursor, conn.Edges[n-1].Cursor
		conn.PageInfo.StartCursor = &start
		conn.PageInfo.EndCursor = &end
	}

	return conn, nil
}
