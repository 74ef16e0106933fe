package ops

import (
	"context"
	"database/sql"

	"github.com/expr-lang/expr/vm"

	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID               string
	Name             string
	IncludeDeleted   bool
	IncludeIntervals *bool // default: true (nil means default)
	Filter           string // optional expression over start, end, weight, length, weighted
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	ID          string              `json:"id"`
	Name        *string             `json:"name,omitempty"`
	SourcePath  string              `json:"source_path"`
	Weighted    bool                `json:"is_weighted"`
	Stats       interval.Stats      `json:"stats"`
	SkippedRows int                 `json:"skipped_rows"`
	Intervals   []interval.Interval `json:"intervals,omitempty"`
	Filter      string              `json:"filter,omitempty"`
	CreatedAt   int64               `json:"created_at"`
	DeletedAt   *int64              `json:"deleted_at,omitempty"`
}

// Fetch retrieves a set by ID or name.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Name)
	if err != nil {
		return nil, err
	}

	includeIntervals := input.IncludeIntervals == nil || *input.IncludeIntervals
	if input.Filter != "" && !includeIntervals {
		return nil, errors.NewInvalidRequest("filter cannot be combined with include_intervals=false")
	}
	var program *vm.Program
	if input.Filter != "" {
		if program, err = compileFilter(input.Filter); err != nil {
			return nil, err
		}
	}

	s, err := resolve(ctx, database, addr, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		ID:          s.ID,
		Name:        s.NameRaw,
		SourcePath:  s.SourcePath,
		Weighted:    s.Weighted,
		Stats:       s.Stats,
		SkippedRows: s.SkippedRows,
		CreatedAt:   s.CreatedAt,
		DeletedAt:   s.DeletedAt,
	}

	if includeIntervals {
		output.Intervals, err = db.GetIntervals(ctx, database, s.ID)
		if err != nil {
			return nil, err
		}
	}
	if program != nil {
		output.Filter = input.Filter
		if output.Intervals, err = applyFilter(ctx, program, output.Intervals); err != nil {
			return nil, err
		}
	}

	return output, nil
}
