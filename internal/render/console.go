package render

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Console writes the figures table and, when withTrace is set, one line per
// settlement record explaining its treatment
func Console(w io.Writer, rep Report, withTrace bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	for _, f := range rep.figureRows() {
		fmt.Fprintf(tw, "%s:\t%s\t\n", f.Label, f.Value.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	res := rep.Result
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d platform, %d exclusion list, %d no customer, %d suppressed\n",
		res.Totals.Counts.Unclassified,
		res.Totals.Counts.ExclusionList,
		res.Totals.Counts.NoCustomer,
		res.Totals.Counts.Suppressed,
	)
	fmt.Fprintf(w, "Invoice lookups: %d remote, %d cached, %d failed\n",
		res.Lookups.Remote, res.Lookups.CacheHits, res.Lookups.Failures)
	if len(res.Coerced) > 0 {
		fmt.Fprintf(w, "Unparsable amounts read as zero: %d\n", len(res.Coerced))
	}
	if !res.Totals.ExclusionListAmmoGross.IsZero() {
		fmt.Fprintf(w, "Excluded product on exclusion-list invoices: %s\n",
			res.Totals.ExclusionListAmmoGross.StringFixed(2))
	}

	if !withTrace {
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCUSTOMER\tEMAIL\tCATEGORY\tGROSS\tFEE\tBUCKET\tINVOICE\tEXCLUDED PRODUCT\tEXCLUDED GROSS / FEE\tNOTE")
	for _, t := range res.Trace {
		row := flattenTrace(t)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Row, row.CustomerID, row.Email, row.Category,
			row.Gross.StringFixed(2), row.Fee.StringFixed(2),
			row.Classification, row.Invoice, row.ExcludedAmount, row.Contributed, row.Note,
		)
	}
	return tw.Flush()
}
