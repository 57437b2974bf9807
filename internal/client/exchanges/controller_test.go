package exchanges

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
)

/*************
 * fakes
 *************/

type fakeSession struct {
	mu   sync.Mutex
	st   session.State
	subs []func(session.State)
}

func loggedIn(u *models.User) *fakeSession {
	cp := *u
	return &fakeSession{st: session.State{IsAuthenticated: true, User: &cp, Token: "tok"}}
}

func (f *fakeSession) Current() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeSession) Subscribe(fn func(session.State)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.subs[idx] = nil
	}
}

func (f *fakeSession) set(st session.State) {
	f.mu.Lock()
	f.st = st
	subs := append([]func(session.State){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(st)
		}
	}
}

// restoringSession finishes a session restore right after the first read,
// the way a background Initialize can race with NewController.
type restoringSession struct {
	*fakeSession
	once     sync.Once
	restored session.State
}

func (r *restoringSession) Current() session.State {
	st := r.fakeSession.Current()
	r.once.Do(func() { r.fakeSession.set(r.restored) })
	return st
}

type transitionCall struct {
	id, userID int64
	action     Action
}

type fakeAPI struct {
	mu sync.Mutex

	list    []models.Exchange
	listErr error
	// listGate, when set, blocks ListUserExchanges until it is closed.
	listGate chan struct{}

	updated *models.Exchange
	trErr   error
	// trGate, when set, blocks transitions until it is closed.
	trGate  chan struct{}
	started chan struct{}

	calls     []transitionCall
	listCalls atomic.Int32
}

func (f *fakeAPI) ListUserExchanges(ctx context.Context, userID int64) ([]models.Exchange, error) {
	f.listCalls.Add(1)
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Exchange(nil), f.list...), nil
}

func (f *fakeAPI) transition(ctx context.Context, id, userID int64, a Action) (*models.Exchange, error) {
	f.mu.Lock()
	f.calls = append(f.calls, transitionCall{id: id, userID: userID, action: a})
	gate, started := f.trGate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated, f.trErr
}

func (f *fakeAPI) AcceptExchange(ctx context.Context, id, userID int64) (*models.Exchange, error) {
	return f.transition(ctx, id, userID, ActionAccept)
}

func (f *fakeAPI) RejectExchange(ctx context.Context, id, userID int64) (*models.Exchange, error) {
	return f.transition(ctx, id, userID, ActionReject)
}

func (f *fakeAPI) transitionCalls() []transitionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transitionCall(nil), f.calls...)
}

func newController(t *testing.T, sess *fakeSession, api *fakeAPI, policy Policy, mode Mode) *Controller {
	t.Helper()
	c := NewController(sess, api, policy, mode, logging.Discard())
	t.Cleanup(c.Close)
	return c
}

func loaded(t *testing.T, sess *fakeSession, api *fakeAPI, mode Mode, list ...models.Exchange) *Controller {
	t.Helper()
	api.list = list
	c := newController(t, sess, api, Policy{}, mode)
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

/*************
 * fetching
 *************/

func TestRefresh_LoadsRowsForCurrentUser(t *testing.T) {
	api := &fakeAPI{}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested), requested(8, models.StatusAccepted))

	rows := c.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(7), rows[0].ID)
	assert.Equal(t, "Dom Casmurro", rows[0].RequestedBook)
	assert.NoError(t, c.LastError())
}

func TestRefresh_RequiresLogin(t *testing.T) {
	c := newController(t, &fakeSession{}, &fakeAPI{}, Policy{}, ModeConfirm)
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNotAuthenticated)
}

func TestFetch_FailureKeepsPreviousListAndRecordsError(t *testing.T) {
	api := &fakeAPI{}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	boom := errors.New("unexpected response shape")
	api.listErr = boom

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Len(t, c.Rows(), 1)
	assert.ErrorIs(t, c.LastError(), boom)

	api.listErr = nil
	require.NoError(t, c.Refresh(context.Background()))
	assert.NoError(t, c.LastError())
}

/*************
 * actions
 *************/

func TestActions_ProviderVersusRequester(t *testing.T) {
	ex := requested(7, models.StatusRequested)

	asProvider := loaded(t, loggedIn(provider), &fakeAPI{}, ModeConfirm, ex)
	assert.Equal(t, []Action{ActionAccept, ActionReject}, asProvider.Actions(7))

	asRequester := loaded(t, loggedIn(requester), &fakeAPI{}, ModeConfirm, ex)
	assert.Empty(t, asRequester.Actions(7))
	assert.Empty(t, asRequester.Actions(999))
}

/*************
 * transitions
 *************/

func TestRequestTransition_ConfirmModeUpdatesOnSuccess(t *testing.T) {
	api := &fakeAPI{}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested), requested(8, models.StatusRequested))

	got, err := c.RequestTransition(context.Background(), 7, ActionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	ex, ok := c.Exchange(7)
	require.True(t, ok)
	assert.Equal(t, models.StatusAccepted, ex.Status)
	assert.Empty(t, c.Actions(7))

	other, _ := c.Exchange(8)
	assert.Equal(t, models.StatusRequested, other.Status)

	assert.Equal(t, []transitionCall{{id: 7, userID: 1, action: ActionAccept}}, api.transitionCalls())
}

func TestRequestTransition_UsesRecordFromServer(t *testing.T) {
	fromServer := requested(7, models.StatusRefused)
	fromServer.ProviderBook.Title = "Dom Casmurro (2ª ed.)"
	api := &fakeAPI{updated: &fromServer}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	_, err := c.RequestTransition(context.Background(), 7, ActionReject)
	require.NoError(t, err)

	ex, _ := c.Exchange(7)
	assert.Equal(t, fromServer, ex)
}

func TestRequestTransition_ConfirmModeFailureLeavesRowUntouched(t *testing.T) {
	api := &fakeAPI{trErr: errors.New("server returned 500")}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
	require.ErrorIs(t, err, api.trErr)

	ex, _ := c.Exchange(7)
	assert.Equal(t, models.StatusRequested, ex.Status)
	assert.False(t, c.Busy())
	assert.Equal(t, []Action{ActionAccept, ActionReject}, c.Actions(7), "controls re-enable after failure")
}

func TestRequestTransition_OptimisticModeAppliesThenRollsBack(t *testing.T) {
	api := &fakeAPI{
		trGate:  make(chan struct{}),
		started: make(chan struct{}, 1),
		trErr:   errors.New("server unavailable"),
	}
	c := loaded(t, loggedIn(provider), api, ModeOptimistic, requested(7, models.StatusRequested), requested(8, models.StatusRequested))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
		done <- err
	}()

	<-api.started
	ex, _ := c.Exchange(7)
	assert.Equal(t, models.StatusAccepted, ex.Status, "applied before the response")
	assert.True(t, c.Busy())

	close(api.trGate)
	require.Error(t, <-done)

	ex, _ = c.Exchange(7)
	assert.Equal(t, models.StatusRequested, ex.Status, "rolled back")
	other, _ := c.Exchange(8)
	assert.Equal(t, models.StatusRequested, other.Status)
}

func TestRequestTransition_NotPermittedMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	c := loaded(t, loggedIn(requester), api, ModeConfirm, requested(7, models.StatusRequested))

	_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.Empty(t, api.transitionCalls())
}

func TestRequestTransition_UnknownExchange(t *testing.T) {
	c := loaded(t, loggedIn(provider), &fakeAPI{}, ModeConfirm)
	_, err := c.RequestTransition(context.Background(), 42, ActionAccept)
	assert.ErrorIs(t, err, ErrExchangeNotFound)
}

func TestRequestTransition_InFlightGuard(t *testing.T) {
	api := &fakeAPI{trGate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested), requested(8, models.StatusRequested))

	first := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
		first <- err
	}()
	<-api.started

	// double click on the same row and a click on another row
	_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
	assert.ErrorIs(t, err, ErrTransitionInFlight)
	_, err = c.RequestTransition(context.Background(), 8, ActionReject)
	assert.ErrorIs(t, err, ErrTransitionInFlight)
	assert.Empty(t, c.Actions(8), "controls disabled while a transition is pending")

	close(api.trGate)
	require.NoError(t, <-first)
	assert.Len(t, api.transitionCalls(), 1)
}

func TestRequestTransition_ConcurrentCallsIssueOneRequest(t *testing.T) {
	api := &fakeAPI{trGate: make(chan struct{}), started: make(chan struct{}, 16)}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	const n = 16
	var (
		wg       sync.WaitGroup
		inFlight atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
			if errors.Is(err, ErrTransitionInFlight) {
				inFlight.Add(1)
			}
		}()
	}

	<-api.started
	// give the losers time to hit the guard before releasing the winner
	require.Eventually(t, func() bool { return inFlight.Load() == n-1 }, time.Second, time.Millisecond)
	close(api.trGate)
	wg.Wait()

	assert.Len(t, api.transitionCalls(), 1)
}

func TestRequestTransition_RefusedWhileFetching(t *testing.T) {
	api := &fakeAPI{}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	api.listGate = make(chan struct{})
	fetched := make(chan error, 1)
	go func() { fetched <- c.Refresh(context.Background()) }()

	require.Eventually(t, c.Busy, time.Second, time.Millisecond)
	_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
	assert.ErrorIs(t, err, ErrFetchInFlight)
	assert.Empty(t, c.Actions(7))

	close(api.listGate)
	require.NoError(t, <-fetched)
	assert.Empty(t, api.transitionCalls())
}

/*************
 * lifecycle
 *************/

func TestLogout_ClearsList(t *testing.T) {
	sess := loggedIn(provider)
	c := loaded(t, sess, &fakeAPI{}, ModeConfirm, requested(7, models.StatusRequested))
	require.Len(t, c.Rows(), 1)

	sess.set(session.State{})

	assert.Empty(t, c.Rows())
	_, ok := c.Exchange(7)
	assert.False(t, ok)
}

func TestProfileUpdate_KeepsList(t *testing.T) {
	sess := loggedIn(provider)
	c := loaded(t, sess, &fakeAPI{}, ModeConfirm, requested(7, models.StatusRequested))

	renamed := *provider
	renamed.Name = "Ana Maria"
	sess.set(session.State{IsAuthenticated: true, User: &renamed, Token: "tok"})

	assert.Len(t, c.Rows(), 1)
}

func TestStaleFetchAfterLogoutIsDiscarded(t *testing.T) {
	sess := loggedIn(provider)
	api := &fakeAPI{list: []models.Exchange{requested(7, models.StatusRequested)}, listGate: make(chan struct{})}
	c := newController(t, sess, api, Policy{}, ModeConfirm)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	require.Eventually(t, c.Busy, time.Second, time.Millisecond)

	sess.set(session.State{})
	close(api.listGate)
	<-done

	assert.Empty(t, c.Rows())
}

func TestClose_DiscardsLateCompletion(t *testing.T) {
	api := &fakeAPI{trGate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
		done <- err
	}()
	<-api.started

	c.Close()
	close(api.trGate)

	assert.ErrorIs(t, <-done, ErrControllerClosed)
	ex, _ := c.Exchange(7)
	assert.Equal(t, models.StatusRequested, ex.Status)
	assert.ErrorIs(t, c.Refresh(context.Background()), ErrControllerClosed)
}

func TestRestoreDuringConstruction_LogoutStillClearsList(t *testing.T) {
	sess := &restoringSession{fakeSession: &fakeSession{}, restored: loggedIn(provider).Current()}
	api := &fakeAPI{list: []models.Exchange{requested(7, models.StatusRequested)}}
	c := NewController(sess, api, Policy{}, ModeConfirm, logging.Discard())
	t.Cleanup(c.Close)

	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, c.Rows(), 1)

	sess.set(session.State{})

	assert.Empty(t, c.Rows(), "previous user's exchanges must go with the session")
}

/*************
 * fetch during a transition
 *************/

func refreshDuring(t *testing.T, c *Controller, api *fakeAPI, fresh models.Exchange) {
	t.Helper()
	api.mu.Lock()
	api.list = []models.Exchange{fresh}
	api.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
}

func TestRequestTransition_FailedOptimisticKeepsRefreshedRow(t *testing.T) {
	api := &fakeAPI{
		trGate:  make(chan struct{}),
		started: make(chan struct{}, 1),
		trErr:   errors.New("server unavailable"),
	}
	c := loaded(t, loggedIn(provider), api, ModeOptimistic, requested(7, models.StatusRequested))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
		done <- err
	}()
	<-api.started

	fresh := requested(7, models.StatusCanceled)
	fresh.ProviderBook.Title = "Dom Casmurro (2ª ed.)"
	refreshDuring(t, c, api, fresh)

	close(api.trGate)
	require.Error(t, <-done)

	ex, _ := c.Exchange(7)
	assert.Equal(t, fresh, ex, "the refreshed row wins over the pre-fetch snapshot")
}

func TestRequestTransition_SuccessAppliesToRefreshedRow(t *testing.T) {
	api := &fakeAPI{trGate: make(chan struct{}), started: make(chan struct{}, 1)}
	c := loaded(t, loggedIn(provider), api, ModeConfirm, requested(7, models.StatusRequested))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestTransition(context.Background(), 7, ActionAccept)
		done <- err
	}()
	<-api.started

	fresh := requested(7, models.StatusRequested)
	fresh.ProviderBook.Title = "Dom Casmurro (2ª ed.)"
	refreshDuring(t, c, api, fresh)

	close(api.trGate)
	require.NoError(t, <-done)

	ex, _ := c.Exchange(7)
	assert.Equal(t, models.StatusAccepted, ex.Status)
	assert.Equal(t, "Dom Casmurro (2ª ed.)", ex.ProviderBook.Title)
}
