package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/models"
)

var toneMarks = map[exchanges.Tone]string{
	exchanges.ToneNeutral: "•",
	exchanges.ToneInfo:    "…",
	exchanges.ToneSuccess: "✔",
	exchanges.ToneError:   "✖",
}

func statusCell(s models.ExchangeStatus) string {
	p := exchanges.Present(s)
	return toneMarks[p.Tone] + " " + p.Label
}

// renderRows writes rows as a table. actions, when not nil, adds a column
// with what the user may do with each row.
func renderRows(w io.Writer, rows []exchanges.Row, actions func(id int64) []exchanges.Action) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Nenhuma troca encontrada.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tSTATUS\tSOLICITADO\tOFERECIDO\tSOLICITANTE\tDONO\tDATA"
	if actions != nil {
		header += "\tAÇÕES"
	}
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		line := strings.Join([]string{
			strconv.FormatInt(r.ID, 10),
			statusCell(r.Status),
			dash(r.RequestedBook),
			dash(r.OfferedBook),
			dash(r.RequesterName),
			dash(r.ProviderName),
			dash(r.RequestDate),
		}, "\t")
		if actions != nil {
			line += "\t" + actionsCell(actions(r.ID))
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func actionsCell(actions []exchanges.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return strings.Join(out, ", ")
}

// renderBooks writes books numbered from 1.
func renderBooks(w io.Writer, books []models.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTÍTULO\tAUTOR\tANO\tDISCIPLINA\tESTADO")
	for i, b := range books {
		year := "-"
		if b.Year > 0 {
			year = strconv.Itoa(b.Year)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, dash(b.Title), dash(b.Author), year, dash(b.Discipline), dash(b.Condition))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
