package ops

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/db"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// ImportMode controls collision behavior when the name is already taken.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision
	ImportModeReplace ImportMode = "replace" // soft-delete the existing set
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Name string     // optional
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	ID          string             `json:"id"`
	Name        *string            `json:"name,omitempty"`
	SourcePath  string             `json:"source_path"`
	Weighted    bool               `json:"is_weighted"`
	Stats       interval.Stats     `json:"stats"`
	SkippedRows int                `json:"skipped_rows"`
	Warnings    []interval.Warning `json:"warnings"`
	CreatedAt   int64              `json:"created_at"`
}

// Import parses an interval table and stores it in the catalog.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	var nameRaw, nameNorm *string
	if name := strings.TrimSpace(input.Name); name != "" {
		norm := interval.Normalize(name)
		nameRaw, nameNorm = &name, &norm
	} else if input.Mode == ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode replace requires a name")
	}

	parsed, err := parseTable(ctx, cfg, input.Path, "import")
	if err != nil {
		return nil, err
	}

	sourcePath, err := filepath.Abs(input.Path)
	if err != nil {
		return nil, errors.NewInvalidRequest("invalid path: " + err.Error())
	}

	now := time.Now()
	id, err := newID(now)
	if err != nil {
		return nil, err
	}

	set := &interval.Set{
		ID:          id,
		NameRaw:     nameRaw,
		NameNorm:    nameNorm,
		SourcePath:  sourcePath,
		Weighted:    parsed.Weighted,
		Stats:       interval.Summarize(parsed.Intervals),
		SkippedRows: len(parsed.Warnings),
		Intervals:   parsed.Intervals,
		CreatedAt:   now.Unix(),
	}

	if input.Mode == ImportModeReplace {
		err = db.ReplaceSet(ctx, database, set)
	} else {
		err = db.InsertSet(ctx, database, set)
	}
	if err == db.ErrUniqueConstraint && nameRaw != nil {
		return nil, errors.NewNameAlreadyExists(*nameRaw)
	}
	if err != nil {
		return nil, err
	}

	return &ImportOutput{
		ID:          set.ID,
		Name:        set.NameRaw,
		SourcePath:  set.SourcePath,
		Weighted:    set.Weighted,
		Stats:       set.Stats,
		SkippedRows: set.SkippedRows,
		Warnings:    parsed.Warnings,
		CreatedAt:   set.CreatedAt,
	}, nil
}
