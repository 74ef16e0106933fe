package ops

import (
	"context"
	"fmt"
	"os"

	"github.com/hpungsan/ivtab/internal/config"
	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// ParseInput contains parameters for the Parse operation.
type ParseInput struct {
	Path string // required
}

// ParseOutput contains the result of the Parse operation.
type ParseOutput struct {
	Path      string              `json:"path"`
	Intervals []interval.Interval `json:"intervals"`
	Weighted  bool                `json:"is_weighted"`
	Count     int                 `json:"count"`
	Warnings  []interval.Warning  `json:"warnings"`
}

// Parse reads an interval table without storing it.
// Skipped rows are returned as Warnings rather than logged; callers decide how to show them.
func Parse(ctx context.Context, cfg *config.Config, input ParseInput) (*ParseOutput, error) {
	return parseTable(ctx, cfg, input.Path, "parse")
}

func parseTable(ctx context.Context, cfg *config.Config, path, op string) (*ParseOutput, error) {
	if err := cancelled(ctx, op); err != nil {
		return nil, err
	}
	if err := ValidatePath(path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	var maxBytes int64
	if cfg != nil {
		maxBytes = cfg.MaxFileBytes
	}
	f, err := openTableNoFollow(path, maxBytes)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	warnings := []interval.Warning{}
	result, err := interval.Read(f, interval.Options{
		Warn: func(w interval.Warning) {
			warnings = append(warnings, w)
		},
	})
	if err != nil {
		return nil, err
	}

	return &ParseOutput{
		Path:      path,
		Intervals: result.Intervals,
		Weighted:  result.Weighted,
		Count:     len(result.Intervals),
		Warnings:  warnings,
	}, nil
}

// checkSize rejects non-regular files and files larger than maxBytes.
// maxBytes <= 0 disables the size limit.
func checkSize(f *os.File, maxBytes int64) error {
	info, err := f.Stat()
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to stat %s: %w", f.Name(), err))
	}
	if !info.Mode().IsRegular() {
		return errors.NewInvalidRequest("path must be a regular file")
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return errors.NewFileTooLarge(maxBytes, info.Size())
	}
	return nil
}
