package web

import (
	"fmt"
	"strings"

	"github.com/hpungsan/ivtab/internal/ops"
)

// maxReportRows caps the interval table in the detail report.
const maxReportRows = 500

var cellEscaper = strings.NewReplacer("`", "'", "|", `\|`)

// buildReport renders a set as Markdown: a stats table followed by its intervals.
func buildReport(set *ops.FetchOutput) string {
	var b strings.Builder

	b.WriteString("## Summary\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Intervals | %s |\n", formatInt(int64(set.Stats.Count)))
	fmt.Fprintf(&b, "| Columns | %s |\n", arity(set.Weighted))
	fmt.Fprintf(&b, "| Min start | %d |\n", set.Stats.MinStart)
	fmt.Fprintf(&b, "| Max end | %d |\n", set.Stats.MaxEnd)
	if set.Weighted {
		fmt.Fprintf(&b, "| Total weight | %s |\n", formatInt(set.Stats.TotalWeight))
	}
	fmt.Fprintf(&b, "| Skipped rows | %d |\n", set.SkippedRows)
	fmt.Fprintf(&b, "| Source | `%s` |\n", cellEscaper.Replace(set.SourcePath))

	b.WriteString("\n## Intervals\n\n")
	if len(set.Intervals) == 0 {
		b.WriteString("_No intervals._\n")
		return b.String()
	}

	if set.Weighted {
		b.WriteString("| # | Start | End | Weight |\n|---:|---:|---:|---:|\n")
	} else {
		b.WriteString("| # | Start | End |\n|---:|---:|---:|\n")
	}
	for i, iv := range set.Intervals {
		if i == maxReportRows {
			fmt.Fprintf(&b, "\n_%d more intervals not shown._\n", len(set.Intervals)-maxReportRows)
			break
		}
		fmt.Fprintf(&b, "| %d | %d | %d |", i+1, iv.Start(), iv.End())
		if w, ok := iv.Weight(); ok {
			fmt.Fprintf(&b, " %d |", w)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
