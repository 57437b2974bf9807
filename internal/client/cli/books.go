package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/models"
)

// Search runs a catalog search and prints the first page.
func (a *App) Search(ctx context.Context, args []string) error {
	a.resetSearch()
	a.query = strings.Join(args, " ")
	return a.showPage(ctx, 1)
}

// Page moves delta pages from the current search page.
func (a *App) Page(ctx context.Context, delta int) error {
	if a.pageNo == 0 {
		return usage("search [query] first, then next / prev")
	}
	target := a.pageNo + delta
	if target < 1 || (a.page.TotalPages > 0 && target > a.page.TotalPages) {
		printlnFn("Não há mais páginas.")
		return nil
	}
	return a.showPage(ctx, target)
}

func (a *App) showPage(ctx context.Context, n int) error {
	page, err := a.books.SearchBooks(ctx, a.query, n, 0)
	if err != nil {
		return err
	}
	a.pageNo = n
	a.page = page.Meta
	a.results = page.Items

	if len(page.Items) == 0 {
		printlnFn("Nenhum livro encontrado.")
		return nil
	}
	if err := renderBooks(a.out, page.Items); err != nil {
		return err
	}
	if page.Meta.TotalPages > 0 {
		printlnFn(fmt.Sprintf("Página %d de %d (%d livros). Use next / prev, ou propose <#>.",
			n, page.Meta.TotalPages, page.Meta.TotalItems))
	}
	return nil
}

func (a *App) resetSearch() {
	a.query, a.pageNo, a.results = "", 0, nil
	a.page = models.PageMeta{}
}

// Propose offers some of the user's books for result n of the current
// search page. One proposal is created per offered book.
func (a *App) Propose(ctx context.Context, args []string) error {
	const u = "propose <# of a search result>"
	if len(args) != 1 {
		return usage(u)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.results) {
		return usage(u)
	}
	requested := a.results[n-1]

	uid, ok := a.session.Current().UserID()
	if !ok {
		return errNotLoggedIn
	}
	if requested.OwnerID == uid {
		return exchanges.ErrOwnBook
	}

	mine, err := a.books.ListUserBooks(ctx, uid)
	if err != nil {
		return err
	}
	if len(mine) == 0 {
		printlnFn("Você ainda não tem livros para oferecer.")
		return nil
	}
	printlnFn(fmt.Sprintf("Seus livros (em troca de %q):", requested.Title))
	if err := renderBooks(a.out, mine); err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, "Números dos livros a oferecer (ex.: 1 3)", a.out)
	if err != nil {
		return err
	}
	offered, err := pickBooks(answer, mine)
	if err != nil {
		return err
	}

	created, err := a.proposer.Propose(ctx, requested, offered)
	if len(created) > 0 {
		printlnFn(fmt.Sprintf("%d proposta(s) enviada(s).", len(created)))
		if rerr := a.exchanges.Refresh(ctx); rerr != nil {
			a.log.Warn(ctx, "refresh after proposal failed", "error", rerr)
		}
	}
	return err
}

// pickBooks maps 1-based positions in books to book ids. Commas and spaces
// both separate positions.
func pickBooks(answer string, books []models.Book) ([]int64, error) {
	fields := strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, exchanges.ErrNoBooksOffered
	}
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		i, err := strconv.Atoi(f)
		if err != nil || i < 1 || i > len(books) {
			return nil, usage(fmt.Sprintf("numbers between 1 and %d", len(books)))
		}
		ids = append(ids, books[i-1].ID)
	}
	return ids, nil
}
