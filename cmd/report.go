package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/enrich-cli/internal/workflow"
)

const topDealCount = 3

// printReport writes a workflow summary to out.
func printReport(out io.Writer, r *workflow.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	s := r.Summary
	_, _ = fmt.Fprintf(w, "Workflow:\t%s\n", r.Workflow)
	if r.RunID != "" {
		_, _ = fmt.Fprintf(w, "Run:\t%s\n", r.RunID)
	}
	if r.JobID != "" {
		_, _ = fmt.Fprintf(w, "Enrichment job:\t%s\n", r.JobID)
	}
	_, _ = fmt.Fprintf(w, "Records:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Submitted:\t%d\n", s.Submitted)
	_, _ = fmt.Fprintf(w, "Enriched:\t%d\n", s.Enriched)
	_, _ = fmt.Fprintf(w, "Updated:\t%d\n", s.Updated)
	_, _ = fmt.Fprintf(w, "Filled:\t%d\n", s.Filled)
	_, _ = fmt.Fprintf(w, "Unchanged:\t%d\n", s.Unchanged)
	_, _ = fmt.Fprintf(w, "Skipped:\t%d\n", s.Skipped)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)

	if len(r.Deals) > 0 {
		_, _ = fmt.Fprintf(w, "Deals created:\t%d\n", len(r.Deals))
		_, _ = fmt.Fprintf(w, "Pipeline value:\t$%.0f\n", r.PipelineValue())
	}
	_ = w.Flush()

	if top := r.TopDeals(topDealCount); len(top) > 0 {
		_, _ = fmt.Fprintln(out, "\nTop deals:")
		for i, d := range top {
			_, _ = fmt.Fprintf(out, "  %d. %s - $%.0f\n", i+1, d.Title, d.Value)
		}
	}

	if len(r.Lookalikes) > 0 {
		_, _ = fmt.Fprintln(out, "\nLookalike companies:")
		lw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(lw, "  NAME\tDOMAIN\tINDUSTRY\tEMPLOYEES")
		for _, c := range r.Lookalikes {
			_, _ = fmt.Fprintf(lw, "  %s\t%s\t%s\t%d\n", c.Name, c.Domain, c.PrimaryIndustry(), c.EmployeeCount)
		}
		_ = lw.Flush()
	}

	if len(r.Errors) > 0 {
		_, _ = fmt.Fprintf(out, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			_, _ = fmt.Fprintf(out, "  %s\n", e.Error())
		}
	}
}
