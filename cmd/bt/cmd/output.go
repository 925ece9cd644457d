package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	domain "github.com/donaldgifford/bargain-tracker/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printBargainTable(w io.Writer, watchers []domain.Watcher) error {
	tw := newTabWriter(w)
	tw.writef("ID\tEMAIL\tTITLE\tURL\n")
	for i := range watchers {
		tw.writef("%s\t%s\t%s\t%s\n",
			shortID(watchers[i].ID),
			watchers[i].Email,
			truncate(watchers[i].ProductTitle, 40),
			watchers[i].ProductURL,
		)
	}
	return tw.finish()
}

func printBargainDetail(w io.Writer, b *domain.Watcher) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", b.ID)
	tw.writef("Email:\t%s\n", b.Email)
	tw.writef("Title:\t%s\n", b.ProductTitle)
	tw.writef("URL:\t%s\n", b.ProductURL)
	tw.writef("Created:\t%s\n", b.CreatedAt.Format(timeLayout))
	return tw.finish()
}

func printSubscription(w io.Writer, s *domain.Subscription) error {
	tw := newTabWriter(w)
	tw.writef("Email:\t%s\n", s.Email)
	tw.writef("Subscribed:\t%v\n", s.Subscribed)
	tw.writef("Channel:\t%s\n", s.ChannelRef)
	tw.writef("Updated:\t%s\n", s.UpdatedAt.Format(timeLayout))
	return tw.finish()
}

func printProductsTable(w io.Writer, products []domain.Product) error {
	tw := newTabWriter(w)
	tw.writef("TITLE\tPRICE\tUPDATED\tURL\n")
	for i := range products {
		tw.writef("%s\t%s\t%s\t%s\n",
			truncate(products[i].ProductTitle, 40),
			domain.FormatPrice(products[i].LatestPrice),
			products[i].UpdatedAt.Format(timeLayout),
			products[i].ProductURL,
		)
	}
	return tw.finish()
}

func printJobRunsTable(w io.Writer, runs []domain.JobRun) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tROWS\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format(timeLayout)
		}
		rows := "-"
		if r.RowsAffected != nil {
			rows = fmt.Sprintf("%d", *r.RowsAffected)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format(timeLayout),
			completed,
			rows,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shortID keeps the table narrow; `bargains get` accepts the full id only.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
