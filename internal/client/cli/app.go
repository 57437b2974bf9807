package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/virapagina/virapagina/internal/client/config"
	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/services"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
)

// SessionView is what the CLI needs from the session manager.
type SessionView interface {
	session.Reader
	Ready() <-chan struct{}
}

// ExchangeController drives the "my exchanges" screen.
type ExchangeController interface {
	Refresh(ctx context.Context) error
	Rows() []exchanges.Row
	Actions(id int64) []exchanges.Action
	RequestTransition(ctx context.Context, id int64, action exchanges.Action) (models.Exchange, error)
}

type Proposer interface {
	Propose(ctx context.Context, requested models.Book, offered []int64) ([]models.Exchange, error)
}

// Moderator drives the moderation screen.
type Moderator interface {
	Load(ctx context.Context) error
	Filter(query string) []exchanges.Row
	SetStatus(ctx context.Context, id int64, status models.ExchangeStatus) error
	Delete(ctx context.Context, id int64) error
}

type BookCatalog interface {
	SearchBooks(ctx context.Context, query string, page, limit int) (models.BookPage, error)
	ListUserBooks(ctx context.Context, userID int64) ([]models.Book, error)
}

// Deps groups the collaborators of App.
type Deps struct {
	Config    *config.Config
	Log       logging.Logger
	Session   SessionView
	Auth      services.AuthService
	Exchanges ExchangeController
	Proposer  Proposer
	Moderator Moderator
	Books     BookCatalog
	In        io.Reader
	Out       io.Writer
}

// App is the interactive client. A single reader is shared by the REPL
// loop and the prompts of the commands.
type App struct {
	config    *config.Config
	log       logging.Logger
	session   SessionView
	auth      services.AuthService
	exchanges ExchangeController
	proposer  Proposer
	moderator Moderator
	books     BookCatalog
	reader    *bufio.Reader
	out       io.Writer

	// last search, used by next/prev and propose
	query   string
	pageNo  int
	page    models.PageMeta
	results []models.Book
}

func NewApp(d Deps) *App {
	in, out := d.In, d.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		config:    d.Config,
		log:       d.Log,
		session:   d.Session,
		auth:      d.Auth,
		exchanges: d.Exchanges,
		proposer:  d.Proposer,
		moderator: d.Moderator,
		books:     d.Books,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run waits until the persisted session is loaded and then serves the REPL
// until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	select {
	case <-a.session.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	if a.isLoggedIn() {
		printlnFn(fmt.Sprintf("Bem-vindo de volta, %s!", a.session.Current().User.Name))
	}
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().IsAuthenticated
}

func (a *App) isModerator() bool {
	st := a.session.Current()
	return st.IsAuthenticated && st.User.IsModerator()
}

// status is shown in the prompt.
func (a *App) status() string {
	st := a.session.Current()
	if !st.IsAuthenticated {
		return "anonymous"
	}
	if st.User.IsModerator() {
		return st.User.Email + " [mod]"
	}
	return st.User.Email
}

// report prints the user-facing form of err.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.log.Debug(context.Background(), "command failed", "error", err)
	printlnFn(userMessage(err))
}
