package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/etc/internal/model"
)

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintList prints runs in a table format.
func (t *TablePrinter) PrintList(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tLABEL\tGOAL\tPROGRESS\tSTATUS\tSTARTED\tDURATION")

	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%.1f%%\t%s\t%s\t%s\n",
			r.ID,
			r.Label,
			r.Goal,
			r.PercentComplete,
			r.Status,
			TimeAgo(r.StartedAt),
			runDuration(r),
		)
	}

	return nil
}

// PrintRun prints detailed run information.
func (t *TablePrinter) PrintRun(run model.Run) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", run.ID)
	if run.Label != "" {
		fmt.Fprintf(t.writer, "Label:      %s\n", run.Label)
	}
	fmt.Fprintf(t.writer, "Status:     %s\n", run.Status)
	fmt.Fprintf(t.writer, "Goal:       %g\n", run.Goal)
	fmt.Fprintf(t.writer, "Baseline:   %g\n", run.Baseline)
	fmt.Fprintf(t.writer, "Final:      %g\n", run.FinalValue)
	fmt.Fprintf(t.writer, "Progress:   %.4f%%\n", run.PercentComplete)
	fmt.Fprintf(t.writer, "Snapshots:  %d\n", run.Snapshots)
	fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(run.StartedAt))

	if run.EndedAt != nil {
		fmt.Fprintf(t.writer, "Ended:      %s\n", FormatTimestamp(*run.EndedAt))
		fmt.Fprintf(t.writer, "Duration:   %s\n", runDuration(run))
	}

	return nil
}

func runDuration(r model.Run) string {
	if r.EndedAt == nil {
		return "-"
	}
	return FormatDuration(r.EndedAt.Sub(r.StartedAt))
}
