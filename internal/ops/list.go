package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/interval"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit          int // default: 20, max: 100
	Offset         int
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []interval.SetSummary `json:"items"`
	Pagination Pagination            `json:"pagination"`
	Sort       string                `json:"sort"`
}

// List returns set summaries, newest first.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	items, total, err := db.ListSets(ctx, database, limit, offset, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []interval.SetSummary{}
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_at_desc",
	}, nil
}
