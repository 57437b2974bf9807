package exchanges

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
)

var (
	ErrTransitionInFlight = errors.New("another transition is in progress")
	ErrFetchInFlight      = errors.New("exchange list is being refreshed")
	ErrNotPermitted       = errors.New("transition not permitted")
	ErrExchangeNotFound   = errors.New("exchange not found")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrControllerClosed   = errors.New("controller closed")
	ErrSessionChanged     = errors.New("session changed while the request was in flight")
)

// API is the part of the backend the controller talks to.
type API interface {
	ListUserExchanges(ctx context.Context, userID int64) ([]models.Exchange, error)
	AcceptExchange(ctx context.Context, id, userID int64) (*models.Exchange, error)
	RejectExchange(ctx context.Context, id, userID int64) (*models.Exchange, error)
}

// Session is the read side of the session manager.
type Session interface {
	session.Reader
	Subscribe(fn func(session.State)) (unsubscribe func())
}

// Mode selects when a transition is applied to the local list.
type Mode int

const (
	// ModeConfirm applies a transition after the backend confirmed it.
	ModeConfirm Mode = iota
	// ModeOptimistic applies it immediately and rolls the row back on failure.
	ModeOptimistic
)

// Controller owns the list of exchanges of the logged-in user.
type Controller struct {
	sess   Session
	api    API
	policy Policy
	mode   Mode
	log    logging.Logger

	mu sync.Mutex
	// sessionUser is the user id last seen from the session; a change
	// resets the list. sessionSeen is set by the first notification.
	sessionUser int64
	sessionSeen bool
	list        []models.Exchange
	// listVersion counts successful fetches; a transition uses it to tell
	// whether the row it touched was replaced meanwhile.
	listVersion   uint64
	fetching      int
	transitioning bool
	lastErr       error
	// generation invalidates completions of requests started before a
	// logout, a user switch or Close.
	generation uint64
	closed     bool

	unsubscribe func()
}

func NewController(sess Session, api API, policy Policy, mode Mode, log logging.Logger) *Controller {
	c := &Controller{
		sess:   sess,
		api:    api,
		policy: policy,
		mode:   mode,
		log:    log.With("component", "exchanges"),
	}
	// subscribe before reading, so a change landing in between is not lost
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
	c.lastErr = nil
	c.generation++
}

// Refresh fetches the exchanges of the logged-in user.
func (c *Controller) Refresh(ctx context.Context) error {
	uid, ok := c.sess.Current().UserID()
	if !ok {
		return ErrNotAuthenticated
	}
	return c.FetchMyExchanges(ctx, uid)
}

// FetchMyExchanges replaces the list with the exchanges of userID. On
// failure the previous list is kept and the error is also available from
// LastError until the next successful fetch.
func (c *Controller) FetchMyExchanges(ctx context.Context, userID int64) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	c.fetching++
	gen := c.generation
	c.mu.Unlock()

	list, err := c.api.ListUserExchanges(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching--

	if c.closed {
		return ErrControllerClosed
	}
	if gen != c.generation {
		c.log.Debug(ctx, "discarding stale exchange list", "user_id", userID)
		return err
	}
	if err != nil {
		c.lastErr = err
		c.log.Warn(ctx, "failed to fetch exchanges", "user_id", userID, "error", err)
		return err
	}

	c.list = list
	c.listVersion++
	c.lastErr = nil
	c.log.Debug(ctx, "exchanges loaded", "user_id", userID, "count", len(list))
	return nil
}

// RequestTransition accepts or rejects exchange id on behalf of the
// logged-in user and returns the resulting record.
func (c *Controller) RequestTransition(ctx context.Context, id int64, action Action) (models.Exchange, error) {
	user := c.sess.Current().User

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.Exchange{}, ErrControllerClosed
	}
	if c.transitioning {
		c.mu.Unlock()
		return models.Exchange{}, ErrTransitionInFlight
	}
	if c.fetching > 0 {
		c.mu.Unlock()
		return models.Exchange{}, ErrFetchInFlight
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return models.Exchange{}, ErrExchangeNotFound
	}
	prev := c.list[idx]
	if !c.policy.CanTransition(user, prev, action) {
		c.mu.Unlock()
		return models.Exchange{}, fmt.Errorf("%w: %s exchange %d", ErrNotPermitted, action, id)
	}

	c.transitioning = true
	gen, version := c.generation, c.listVersion
	if c.mode == ModeOptimistic {
		c.list[idx].Status = action.Target()
	}
	c.mu.Unlock()

	updated, err := c.send(ctx, id, user.ID, action)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitioning = false

	if c.closed {
		return models.Exchange{}, ErrControllerClosed
	}
	if gen != c.generation {
		if err != nil {
			return models.Exchange{}, err
		}
		return models.Exchange{}, ErrSessionChanged
	}

	idx = c.indexLocked(id)
	if err != nil {
		// a fetch that landed meanwhile already holds the backend's status
		if c.mode == ModeOptimistic && idx >= 0 && version == c.listVersion {
			c.list[idx].Status = prev.Status
		}
		c.log.Warn(ctx, "exchange transition failed", "exchange_id", id, "action", action, "error", err)
		return models.Exchange{}, fmt.Errorf("%s exchange %d: %w", action, id, err)
	}

	// apply to the row as it is now: a fetch may have refreshed it
	next := prev
	if idx >= 0 {
		next = c.list[idx]
	}
	next.Status = action.Target()
	if updated != nil && updated.ID == id {
		next = *updated
		if next.Status == "" {
			next.Status = action.Target()
		}
	}
	if idx >= 0 {
		c.list[idx] = next
	}
	c.log.Info(ctx, "exchange transitioned", "exchange_id", id, "action", action, "status", next.Status)
	return next, nil
}

func (c *Controller) send(ctx context.Context, id, userID int64, action Action) (*models.Exchange, error) {
	if action == ActionAccept {
		return c.api.AcceptExchange(ctx, id, userID)
	}
	return c.api.RejectExchange(ctx, id, userID)
}

func (c *Controller) indexLocked(id int64) int {
	for i := range c.list {
		if c.list[i].ID == id {
			return i
		}
	}
	return -1
}

// Rows returns the display projection of the list, in backend order.
func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]Row, 0, len(c.list))
	for _, ex := range c.list {
		rows = append(rows, Project(ex))
	}
	return rows
}

// Exchange returns a copy of the exchange with the given id.
func (c *Controller) Exchange(id int64) (models.Exchange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.list[idx], true
	}
	return models.Exchange{}, false
}

// Actions lists what the logged-in user may do with exchange id right now.
// Nothing is offered while a fetch or a transition is pending.
func (c *Controller) Actions(id int64) []Action {
	user := c.sess.Current().User

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetching > 0 || c.transitioning {
		return nil
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		return nil
	}
	return c.policy.Actions(user, c.list[idx])
}

// LastError is the error of the last failed fetch, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Busy reports whether a fetch or a transition is outstanding.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching > 0 || c.transitioning
}

// Close detaches the controller from the session. Requests still in flight
// complete without touching the list.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.mu.Unlock()

	c.unsubscribe()
}
