package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/virapagina/virapagina/internal/client/exchanges"
)

// List refreshes and prints the user's exchanges. When the refresh fails the
// previous list, if any, is still shown.
func (a *App) List(ctx context.Context) error {
	err := a.exchanges.Refresh(ctx)
	rows := a.exchanges.Rows()
	if err != nil && len(rows) == 0 {
		return err
	}
	if rerr := renderRows(a.out, rows, a.exchanges.Actions); rerr != nil {
		return rerr
	}
	return err
}

// Transition accepts or rejects the exchange named in args after asking for
// confirmation.
func (a *App) Transition(ctx context.Context, args []string, action exchanges.Action) error {
	if len(args) != 1 {
		return usage(string(action) + " <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(string(action) + " <id>")
	}

	row, ok := a.findRow(id)
	if !ok {
		return exchanges.ErrExchangeNotFound
	}
	if !slices.Contains(a.exchanges.Actions(id), action) {
		return exchanges.ErrNotPermitted
	}

	question := fmt.Sprintf("Aceitar a troca #%d (%s por %s)?", id, row.RequestedBook, row.OfferedBook)
	if action == exchanges.ActionReject {
		question = fmt.Sprintf("Recusar a troca #%d (%s por %s)?", id, row.RequestedBook, row.OfferedBook)
	}
	ok, err = confirm(a.reader, question, a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelado.")
		return nil
	}

	ex, err := a.exchanges.RequestTransition(ctx, id, action)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Troca #%d: %s", ex.ID, statusCell(ex.Status)))
	return nil
}

func (a *App) findRow(id int64) (exchanges.Row, bool) {
	for _, r := range a.exchanges.Rows() {
		if r.ID == id {
			return r, true
		}
	}
	return exchanges.Row{}, false
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
