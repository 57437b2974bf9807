package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/virapagina/virapagina/internal/client/models"
)

// ModList loads every exchange and prints those matching the optional query.
func (a *App) ModList(ctx context.Context, args []string) error {
	if err := a.moderator.Load(ctx); err != nil {
		return err
	}
	return renderRows(a.out, a.moderator.Filter(strings.Join(args, " ")), nil)
}

// ModStatus overrides the status of an exchange.
func (a *App) ModStatus(ctx context.Context, args []string) error {
	const u = "mod-status <id> <STATUS>"
	if len(args) != 2 {
		return usage(u)
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(u)
	}
	status := models.ExchangeStatus(strings.ToUpper(args[1]))

	if err := a.moderator.SetStatus(ctx, id, status); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Troca #%d: %s", id, statusCell(status)))
	return nil
}

// ModDelete deletes an exchange after confirmation.
func (a *App) ModDelete(ctx context.Context, args []string) error {
	const u = "mod-delete <id>"
	if len(args) != 1 {
		return usage(u)
	}
	id, err := parseID(args[0])
	if err != nil {
		return usage(u)
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Excluir a troca #%d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelado.")
		return nil
	}
	if err := a.moderator.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Troca #%d excluída.", id))
	return nil
}
