package interval

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Column counts a data row may have.
const (
	UnweightedColumns = 2
	WeightedColumns   = 3
)

// Interval is one (start, end) or (start, end, weight) record.
// The zero value is the unweighted interval (0, 0).
type Interval struct {
	start    int64
	end      int64
	weight   int64
	weighted bool
}

// New returns an unweighted interval.
func New(start, end int64) Interval {
	return Interval{start: start, end: end}
}

// NewWeighted returns a weighted interval.
func NewWeighted(start, end, weight int64) Interval {
	return Interval{start: start, end: end, weight: weight, weighted: true}
}

// Start returns the first field.
func (iv Interval) Start() int64 { return iv.start }

// End returns the second field.
func (iv Interval) End() int64 { return iv.end }

// Weight returns the third field and whether the interval carries one.
func (iv Interval) Weight() (int64, bool) { return iv.weight, iv.weighted }

// Weighted reports whether the interval has a weight field.
func (iv Interval) Weighted() bool { return iv.weighted }

// Arity returns 2 for unweighted intervals and 3 for weighted ones.
func (iv Interval) Arity() int {
	if iv.weighted {
		return WeightedColumns
	}
	return UnweightedColumns
}

// Values returns the fields in column order.
func (iv Interval) Values() []int64 {
	if iv.weighted {
		return []int64{iv.start, iv.end, iv.weight}
	}
	return []int64{iv.start, iv.end}
}

// String formats the interval as a tuple, e.g. "(1, 5)" or "(1, 5, 10)".
func (iv Interval) String() string {
	parts := make([]string, 0, WeightedColumns)
	for _, v := range iv.Values() {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON encodes the interval as an integer array.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(iv.Values())
}

// UnmarshalJSON decodes an integer array of length 2 or 3.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var vals []int64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	switch len(vals) {
	case UnweightedColumns:
		*iv = New(vals[0], vals[1])
	case WeightedColumns:
		*iv = NewWeighted(vals[0], vals[1], vals[2])
	default:
		return fmt.Errorf("interval must have 2 or 3 values, got %d", len(vals))
	}
	return nil
}

// Result is the validated content of one interval table.
// Every interval has the same arity; Weighted applies to all of them.
type Result struct {
	Intervals []Interval `json:"intervals"`
	Weighted  bool       `json:"is_weighted"`
}

// Arity returns the column count shared by every interval in the result.
func (r *Result) Arity() int {
	if r.Weighted {
		return WeightedColumns
	}
	return UnweightedColumns
}

// Warning reports a row that was dropped for having the wrong column count.
type Warning struct {
	Row     int `json:"row"`
	Columns int `json:"columns"`
}

// String renders the warning for diagnostic output.
func (w Warning) String() string {
	return fmt.Sprintf("row %d has %d columns (expected 2 or 3); skipping", w.Row, w.Columns)
}
