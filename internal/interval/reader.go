package interval

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/hpungsan/ivtab/internal/errors"
)

// Options controls a single Read.
type Options struct {
	// Warn receives rows skipped for having a column count other than 2 or 3.
	// Nil logs them through the standard logger.
	Warn func(Warning)
}

// row is a data row that survived admission, pending conversion.
type row struct {
	line  int
	cells []string
}

// ReadFile opens path and reads it as an interval table.
// The file is closed before ReadFile returns.
func ReadFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses a comma-delimited interval table.
//
// Blank rows and rows whose first cell starts with '#' are ignored. Rows with
// a column count outside [2, 3] are reported through opts.Warn and dropped.
// The remaining rows must all have the same column count; that count decides
// whether the result is weighted. Any fatal error discards the whole result.
func Read(r io.Reader, opts Options) (*Result, error) {
	warn := opts.Warn
	if warn == nil {
		warn = logWarning
	}

	accepted, err := admitRows(r, warn)
	if err != nil {
		return nil, err
	}

	if len(accepted) == 0 {
		return nil, errors.NewEmptyInput()
	}

	// Shape is checked for the whole table before any cell is converted.
	arities := distinctArities(accepted)
	if len(arities) != 1 {
		return nil, errors.NewInconsistentArity(arities)
	}

	weighted := arities[0] == WeightedColumns
	intervals := make([]Interval, 0, len(accepted))
	for _, rw := range accepted {
		var vals [WeightedColumns]int64
		for i, cell := range rw.cells {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.NewMalformedCell(rw.line, i+1, cell)
			}
			vals[i] = v
		}
		if weighted {
			intervals = append(intervals, NewWeighted(vals[0], vals[1], vals[2]))
		} else {
			intervals = append(intervals, New(vals[0], vals[1]))
		}
	}

	return &Result{Intervals: intervals, Weighted: weighted}, nil
}

// admitRows runs the filtering pass and returns the accepted rows in input order.
func admitRows(r io.Reader, warn func(Warning)) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var accepted []row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				return nil, errors.NewMalformedRow(perr.StartLine, perr.Err)
			}
			return nil, errors.NewInternal(err)
		}

		// Physical line numbers keep skipped and empty lines in the count.
		line, _ := cr.FieldPos(0)

		if isBlank(record) || isComment(record) {
			continue
		}
		if len(record) < UnweightedColumns || len(record) > WeightedColumns {
			warn(Warning{Row: line, Columns: len(record)})
			continue
		}
		accepted = append(accepted, row{line: line, cells: record})
	}
	return accepted, nil
}

// isBlank reports whether every cell is empty after trimming.
func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isComment reports whether the first cell starts with '#' after trimming.
func isComment(record []string) bool {
	return len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), "#")
}

// distinctArities returns the sorted set of column counts among rows.
func distinctArities(rows []row) []int {
	var arities []int
	for _, rw := range rows {
		if !slices.Contains(arities, len(rw.cells)) {
			arities = append(arities, len(rw.cells))
		}
	}
	slices.Sort(arities)
	return arities
}

// parseCell converts a base-10 integer literal with an optional sign.
// Surrounding whitespace is ignored.
func parseCell(cell string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
}

func logWarning(w Warning) {
	log.Printf("warning: %s", w)
}
