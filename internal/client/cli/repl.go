package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/virapagina/virapagina/internal/client/exchanges"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isModerator() bool
	report(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context, asModerator bool) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error

	List(ctx context.Context) error
	Transition(ctx context.Context, args []string, action exchanges.Action) error

	Search(ctx context.Context, args []string) error
	Page(ctx context.Context, delta int) error
	Propose(ctx context.Context, args []string) error

	ModList(ctx context.Context, args []string) error
	ModStatus(ctx context.Context, args []string) error
	ModDelete(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the Vira a Página CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                      show available commands
//	  - register                  create an account
//	  - login | modlogin          authenticate (as student or moderator)
//	  - exit | quit               leave the program
//
//	Logged in:
//	  - (l)ist | exchanges        list my exchanges
//	  - accept <id> | reject <id> answer a proposal addressed to me
//	  - search [query]            search the catalog; next / prev to page
//	  - propose <n>               offer my books for result n of the last search
//	  - whoami | profile          show or edit my profile
//	  - logout
//
//	Moderators also get mod-list [query], mod-status <id> <STATUS> and
//	mod-delete <id>.
//
// Errors returned by handlers are passed to a.report, which prints a
// user-facing message. The loop itself keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("vp> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.report(err)
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "register":
				a.report(a.Register(ctx))
			case "login":
				a.report(a.Login(ctx, false))
			case "modlogin":
				a.report(a.Login(ctx, true))
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			a.report(a.Logout(ctx))

		case "whoami":
			a.report(a.WhoAmI(ctx))

		case "profile":
			a.report(a.Profile(ctx))

		case "l", "list", "exchanges":
			a.report(a.List(ctx))

		case "accept":
			a.report(a.Transition(ctx, args, exchanges.ActionAccept))

		case "reject":
			a.report(a.Transition(ctx, args, exchanges.ActionReject))

		case "search":
			a.report(a.Search(ctx, args))

		case "next":
			a.report(a.Page(ctx, 1))

		case "prev":
			a.report(a.Page(ctx, -1))

		case "propose":
			a.report(a.Propose(ctx, args))

		case "mod-list", "mod-status", "mod-delete":
			if !a.isModerator() {
				printlnFn("Unknown command:", cmd)
				continue
			}
			switch cmd {
			case "mod-list":
				a.report(a.ModList(ctx, args))
			case "mod-status":
				a.report(a.ModStatus(ctx, args))
			case "mod-delete":
				a.report(a.ModDelete(ctx, args))
			}

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return "Available commands: register, login, modlogin, exit"
	case a.isModerator():
		return "Available commands: (l)ist, accept, reject, search, next, prev, propose, whoami, profile, mod-list, mod-status, mod-delete, logout, exit"
	}
	return "Available commands: (l)ist, accept, reject, search, next, prev, propose, whoami, profile, logout, exit"
}
