package ops

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hpungsan/ivtab/internal/errors"
	"github.com/hpungsan/ivtab/internal/interval"
)

// filterEnv returns the variables a filter expression sees for iv.
// weight is 0 for unweighted intervals.
func filterEnv(iv interval.Interval) map[string]any {
	w, _ := iv.Weight()
	return map[string]any{
		"start":    iv.Start(),
		"end":      iv.End(),
		"weight":   w,
		"length":   iv.End() - iv.Start(),
		"weighted": iv.Weighted(),
	}
}

// compileFilter compiles a boolean interval filter such as "start >= 10 && weight > 2".
func compileFilter(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(interval.Interval{})), expr.AsBool())
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid filter: %v", err))
	}
	return program, nil
}

// applyFilter keeps the intervals for which program evaluates to true, in order.
func applyFilter(ctx context.Context, program *vm.Program, intervals []interval.Interval) ([]interval.Interval, error) {
	kept := []interval.Interval{}
	for i, iv := range intervals {
		if i%1000 == 0 {
			if err := cancelled(ctx, "fetch"); err != nil {
				return nil, err
			}
		}
		out, err := expr.Run(program, filterEnv(iv))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("filter failed on interval %d: %v", i+1, err))
		}
		if match, _ := out.(bool); match {
			kept = append(kept, iv)
		}
	}
	return kept, nil
}
