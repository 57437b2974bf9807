package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/repositories/localstore"
	"github.com/virapagina/virapagina/internal/logging"
)

var (
	ErrInvalidUser   = errors.New("user record must have an id")
	ErrEmptyToken    = errors.New("token must not be empty")
	ErrManagerClosed = errors.New("session manager closed")
)

var errCorrupted = errors.New("corrupted session record")

// Manager is the single owner of the session state.
type Manager struct {
	store Storage
	log   logging.Logger

	// opMu serializes mutations so persistence and the in-memory update
	// happen as one step.
	opMu sync.Mutex

	mu     sync.RWMutex
	state  State
	closed bool

	initOnce sync.Once
	ready    chan struct{}

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewManager(store Storage, log logging.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With("component", "session"),
		ready: make(chan struct{}),
		subs:  make(map[int]func(State)),
	}
}

// Ready is closed once Initialize has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Current returns a snapshot of the session.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// Initialize hydrates the session from storage. It never fails: unreadable
// storage means "no session", and a corrupted record is removed. Only the
// first call reads storage; later calls return the current state.
func (m *Manager) Initialize(ctx context.Context) State {
	m.initOnce.Do(func() {
		defer close(m.ready)

		st, err := m.load(ctx)
		switch {
		case errors.Is(err, errCorrupted):
			m.log.Warn(ctx, "discarding corrupted persisted session", "error", err)
			if err := m.clearStorage(ctx); err != nil {
				m.log.Warn(ctx, "failed to remove corrupted session", "error", err)
			}
			return
		case err != nil:
			m.log.Warn(ctx, "persisted session unavailable, starting logged out", "error", err)
			return
		case !st.IsAuthenticated:
			return
		}

		m.setState(st)
		m.log.Info(ctx, "session restored", "user_id", st.User.ID)
		m.notify(st)
	})
	return m.Current()
}

// Start runs Initialize in the background. stop cancels it and waits for it
// to return, after which the storage may be closed.
func (m *Manager) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	go m.Initialize(ctx)
	return func() {
		cancel()
		<-m.Ready()
	}
}

func (m *Manager) load(ctx context.Context) (State, error) {
	rawUser, hasUser, err := m.store.GetItem(ctx, UserKey)
	if err != nil {
		return State{}, err
	}
	token, hasToken, err := m.store.GetItem(ctx, TokenKey)
	if err != nil {
		return State{}, err
	}
	if !hasUser || !hasToken || rawUser == "" || token == "" {
		return State{}, nil
	}

	user, err := decodeUser(rawUser)
	if err != nil {
		return State{}, err
	}
	return authenticated(user, token), nil
}

func decodeUser(raw string) (models.User, error) {
	var u *models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", errCorrupted, err)
	}
	if u == nil {
		return models.User{}, fmt.Errorf("%w: null user", errCorrupted)
	}
	if u.ID == 0 {
		return models.User{}, fmt.Errorf("%w: %v", errCorrupted, ErrInvalidUser)
	}
	return *u, nil
}

// Login persists user and token, then marks the session authenticated.
// The caller has already completed the network round trip. On a storage
// error the session is left as it was.
func (m *Manager) Login(ctx context.Context, user models.User, token string) error {
	if user.ID == 0 {
		return ErrInvalidUser
	}
	if token == "" {
		return ErrEmptyToken
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.isClosed() {
		return ErrManagerClosed
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = m.store.Atomic(ctx, func(ctx context.Context, repo localstore.Repository) error {
		if err := repo.SetItem(ctx, UserKey, string(raw)); err != nil {
			return err
		}
		return repo.SetItem(ctx, TokenKey, token)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	st := authenticated(user, token)
	m.setState(st)
	m.log.Info(ctx, "logged in", "user_id", user.ID, "role", user.Role)
	m.notify(st)
	return nil
}

// Logout removes the persisted session and resets the state. Calling it
// while logged out is harmless.
func (m *Manager) Logout(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.isClosed() {
		return ErrManagerClosed
	}

	if err := m.clearStorage(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	wasAuthenticated := m.Current().IsAuthenticated
	m.setState(State{})
	if wasAuthenticated {
		m.log.Info(ctx, "logged out")
		m.notify(State{})
	}
	return nil
}

// UpdateUser shallow-merges patch into the current user and persists the
// result. The token is not touched. Without a loaded user it does nothing.
func (m *Manager) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.isClosed() {
		return ErrManagerClosed
	}

	cur := m.Current()
	if cur.User == nil {
		return nil
	}

	merged := cur.User.Merge(patch)
	if merged.ID == 0 {
		return ErrInvalidUser
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.SetItem(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	cur.User = &merged
	m.setState(cur)
	m.notify(cur.clone())
	return nil
}

// Subscribe registers fn to be called with the new state after every change.
// The returned func unregisters it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

// Close tears the manager down: subscribers are dropped and further
// mutations fail with ErrManagerClosed. Persisted data is kept.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.subsMu.Lock()
	m.subs = make(map[int]func(State))
	m.subsMu.Unlock()
}

func (m *Manager) clearStorage(ctx context.Context) error {
	return m.store.Atomic(ctx, func(ctx context.Context, repo localstore.Repository) error {
		if err := repo.RemoveItem(ctx, UserKey); err != nil {
			return err
		}
		return repo.RemoveItem(ctx, TokenKey)
	})
}

func (m *Manager) setState(st State) {
	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) notify(st State) {
	m.subsMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(st.clone())
	}
}
