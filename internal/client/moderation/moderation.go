// Package moderation is the moderator's view over every exchange: list,
// search, status override and delete.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotModerator     = errors.New("moderator access required")
	ErrExchangeNotFound = errors.New("exchange not found")
	ErrUnknownStatus    = errors.New("unknown exchange status")
)

type API interface {
	ListAllExchanges(ctx context.Context) ([]models.Exchange, error)
	SetExchangeStatus(ctx context.Context, id int64, status models.ExchangeStatus) (*models.Exchange, error)
	DeleteExchange(ctx context.Context, id int64) error
}

type Controller struct {
	sess exchanges.Session
	api  API
	log  logging.Logger

	mu          sync.Mutex
	list        []models.Exchange
	sessionUser int64
	sessionSeen bool

	unsubscribe func()
}

// NewController returns a controller whose list is dropped whenever the
// logged-in user changes.
func NewController(sess exchanges.Session, api API, log logging.Logger) *Controller {
	c := &Controller{sess: sess, api: api, log: log.With("component", "moderation")}
	c.unsubscribe = sess.Subscribe(c.onSession)
	uid, _ := sess.Current().UserID()

	c.mu.Lock()
	if !c.sessionSeen {
		c.sessionUser = uid
	}
	c.mu.Unlock()
	return c
}

func (c *Controller) onSession(st session.State) {
	uid, _ := st.UserID()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionSeen = true
	if uid == c.sessionUser {
		return
	}
	c.sessionUser = uid
	c.list = nil
}

// Close detaches the controller from the session and drops the list.
func (c *Controller) Close() {
	c.unsubscribe()
	c.mu.Lock()
	c.list = nil
	c.mu.Unlock()
}

func (c *Controller) authorize() error {
	st := c.sess.Current()
	if !st.IsAuthenticated || !st.User.IsModerator() {
		return ErrNotModerator
	}
	return nil
}

// Load replaces the list with every exchange known to the backend.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.authorize(); err != nil {
		return err
	}
	list, err := c.api.ListAllExchanges(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.list = list
	c.mu.Unlock()
	return nil
}

// Filter returns the exchanges whose participants or book titles contain
// query, ignoring case and accents. An empty query matches everything.
// Non-moderators get nothing.
func (c *Controller) Filter(query string) []exchanges.Row {
	if c.authorize() != nil {
		return nil
	}
	q := fold(strings.TrimSpace(query))

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]exchanges.Row, 0, len(c.list))
	for _, ex := range c.list {
		row := exchanges.Project(ex)
		if q == "" || matches(q, row.RequesterName, row.ProviderName, row.OfferedBook, row.RequestedBook) {
			out = append(out, row)
		}
	}
	return out
}

// fold reduces s to a caseless, accentless form: "Memórias" and "MEMORIAS"
// fold to the same string.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(fold(f), q) {
			return true
		}
	}
	return false
}

// SetStatus overrides the status of exchange id. The list shows the new
// status right away and is restored if the backend refuses it.
func (c *Controller) SetStatus(ctx context.Context, id int64, status models.ExchangeStatus) error {
	if err := c.authorize(); err != nil {
		return err
	}
	if !status.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrExchangeNotFound
	}
	prev := c.list[idx]
	c.list[idx].Status = status
	c.mu.Unlock()

	updated, err := c.api.SetExchangeStatus(ctx, id, status)

	c.mu.Lock()
	defer c.mu.Unlock()
	idx = c.indexLocked(id)
	if err != nil {
		if idx >= 0 {
			c.list[idx] = prev
		}
		c.log.Warn(ctx, "status override failed", "exchange_id", id, "status", status, "error", err)
		return fmt.Errorf("set status of exchange %d: %w", id, err)
	}
	if updated != nil && idx >= 0 {
		if updated.RequesterBook.Owner == nil {
			// keep the nested owners the list was loaded with
			updated.RequesterBook.Owner = prev.RequesterBook.Owner
			updated.ProviderBook.Owner = prev.ProviderBook.Owner
		}
		c.list[idx] = *updated
	}
	c.log.Info(ctx, "exchange status overridden", "exchange_id", id, "status", status)
	return nil
}

// Delete removes exchange id on the backend and then from the list.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.authorize(); err != nil {
		return err
	}

	c.mu.Lock()
	found := c.indexLocked(id) >= 0
	c.mu.Unlock()
	if !found {
		return ErrExchangeNotFound
	}

	if err := c.api.DeleteExchange(ctx, id); err != nil {
		return fmt.Errorf("delete exchange %d: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.list = append(c.list[:idx], c.list[idx+1:]...)
	}
	c.log.Info(ctx, "exchange deleted", "exchange_id", id)
	return nil
}

func (c *Controller) indexLocked(id int64) int {
	for i := range c.list {
		if c.list[i].ID == id {
			return i
		}
	}
	return -1
}
