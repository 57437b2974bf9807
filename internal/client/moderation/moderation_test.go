package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/logging"
)

type staticSession struct{ st session.State }

func (s staticSession) Current() session.State { return s.st }

func (s staticSession) Subscribe(func(session.State)) func() { return func() {} }

// liveSession publishes changes to its subscribers.
type liveSession struct {
	st   session.State
	subs []func(session.State)
}

func (s *liveSession) Current() session.State { return s.st }

func (s *liveSession) Subscribe(fn func(session.State)) func() {
	s.subs = append(s.subs, fn)
	return func() { s.subs = nil }
}

func (s *liveSession) set(st session.State) {
	s.st = st
	for _, fn := range s.subs {
		fn(st)
	}
}

func as(role string) staticSession {
	return staticSession{st: session.State{
		IsAuthenticated: true,
		User:            &models.User{ID: 99, Name: "Mod", Role: role},
		Token:           "tok",
	}}
}

type fakeAPI struct {
	list      []models.Exchange
	statusErr error
	deleteErr error
	updated   *models.Exchange

	statusCalls []models.ExchangeStatus
	deleted     []int64
}

func (f *fakeAPI) ListAllExchanges(ctx context.Context) ([]models.Exchange, error) {
	return append([]models.Exchange(nil), f.list...), nil
}

func (f *fakeAPI) SetExchangeStatus(ctx context.Context, id int64, s models.ExchangeStatus) (*models.Exchange, error) {
	f.statusCalls = append(f.statusCalls, s)
	return f.updated, f.statusErr
}

func (f *fakeAPI) DeleteExchange(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func nested(id int64, requester, provider, offered, wanted string) models.Exchange {
	ex := models.Exchange{
		ID:            id,
		Status:        models.StatusRequested,
		RequesterBook: models.BookRef{ID: id * 10, Title: offered, Owner: &models.UserRef{ID: id*10 + 1, Name: requester}},
		ProviderBook:  models.BookRef{ID: id*10 + 5, Title: wanted, Owner: &models.UserRef{ID: id*10 + 2, Name: provider}},
	}
	ex.Normalize()
	return ex
}

func loadedController(t *testing.T, api *fakeAPI) *Controller {
	t.Helper()
	api.list = []models.Exchange{
		nested(1, "Bia", "Caio", "Iracema", "O Cortiço"),
		nested(2, "Davi", "Elis", "Macunaíma", "Memórias Póstumas"),
	}
	c := NewController(as(models.RoleModerator), api, logging.Discard())
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestAuthorize_StudentsAndAnonymousAreRejected(t *testing.T) {
	for _, sess := range []staticSession{{}, as(models.RoleStudent)} {
		c := NewController(sess, &fakeAPI{}, logging.Discard())
		assert.ErrorIs(t, c.Load(context.Background()), ErrNotModerator)
		assert.ErrorIs(t, c.SetStatus(context.Background(), 1, models.StatusCanceled), ErrNotModerator)
		assert.ErrorIs(t, c.Delete(context.Background(), 1), ErrNotModerator)
	}

	c := NewController(as(models.RoleAdmin), &fakeAPI{}, logging.Discard())
	assert.NoError(t, c.Load(context.Background()))
}

func TestFilter(t *testing.T) {
	c := loadedController(t, &fakeAPI{})

	assert.Len(t, c.Filter(""), 2)
	assert.Len(t, c.Filter("   "), 2)

	rows := c.Filter("cAiO")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)

	rows = c.Filter("póstumas")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ID)

	assert.Empty(t, c.Filter("machado"))
}

func TestSetStatus_Success(t *testing.T) {
	api := &fakeAPI{}
	c := loadedController(t, api)

	require.NoError(t, c.SetStatus(context.Background(), 2, models.StatusCompleted))
	assert.Equal(t, []models.ExchangeStatus{models.StatusCompleted}, api.statusCalls)
	assert.Equal(t, models.StatusCompleted, c.Filter("Davi")[0].Status)
}

func TestSetStatus_ServerRecordKeepsNames(t *testing.T) {
	api := &fakeAPI{updated: &models.Exchange{ID: 1, Status: models.StatusCanceled, RequesterBook: models.BookRef{Title: "Iracema"}}}
	c := loadedController(t, api)

	require.NoError(t, c.SetStatus(context.Background(), 1, models.StatusCanceled))
	row := c.Filter("Bia")[0]
	assert.Equal(t, models.StatusCanceled, row.Status)
	assert.Equal(t, "Caio", row.ProviderName)
}

func TestSetStatus_RollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{statusErr: errors.New("server unavailable")}
	c := loadedController(t, api)

	err := c.SetStatus(context.Background(), 1, models.StatusCanceled)
	require.ErrorIs(t, err, api.statusErr)
	assert.Equal(t, models.StatusRequested, c.Filter("Bia")[0].Status)
}

func TestSetStatus_Validation(t *testing.T) {
	api := &fakeAPI{}
	c := loadedController(t, api)

	assert.ErrorIs(t, c.SetStatus(context.Background(), 1, "BOGUS"), ErrUnknownStatus)
	assert.ErrorIs(t, c.SetStatus(context.Background(), 404, models.StatusCanceled), ErrExchangeNotFound)
	assert.Empty(t, api.statusCalls)
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	c := loadedController(t, api)

	require.NoError(t, c.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, api.deleted)
	assert.Len(t, c.Filter(""), 1)

	assert.ErrorIs(t, c.Delete(context.Background(), 1), ErrExchangeNotFound)
}

func TestDelete_FailureKeepsRow(t *testing.T) {
	api := &fakeAPI{deleteErr: errors.New("forbidden")}
	c := loadedController(t, api)

	require.Error(t, c.Delete(context.Background(), 2))
	assert.Len(t, c.Filter(""), 2)
}

func TestFilter_IgnoresAccents(t *testing.T) {
	c := loadedController(t, &fakeAPI{})

	rows := c.Filter("MEMORIAS postumas")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ID)

	assert.Len(t, c.Filter("cortico"), 1)
}

func TestFold(t *testing.T) {
	assert.Equal(t, fold("macunaima"), fold("Macunaíma"))
	assert.Equal(t, "sao paulo", fold("São Paulo"))
}

func TestSessionChange_DropsList(t *testing.T) {
	sess := &liveSession{st: as(models.RoleModerator).st}
	api := &fakeAPI{list: []models.Exchange{nested(1, "Bia", "Caio", "Iracema", "O Cortiço")}}
	c := NewController(sess, api, logging.Discard())
	t.Cleanup(c.Close)
	require.NoError(t, c.Load(context.Background()))
	require.Len(t, c.Filter(""), 1)

	sess.set(session.State{})
	assert.Empty(t, c.Filter(""))

	// a student logging in on the same client sees nothing either
	sess.set(as(models.RoleModerator).st)
	assert.Empty(t, c.Filter(""), "list is not reloaded by itself")
	sess.set(as(models.RoleStudent).st)
	assert.Nil(t, c.Filter(""))
}

func TestFilter_RequiresModerator(t *testing.T) {
	sess := &liveSession{st: as(models.RoleModerator).st}
	api := &fakeAPI{list: []models.Exchange{nested(1, "Bia", "Caio", "Iracema", "O Cortiço")}}
	c := NewController(sess, api, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	// same user id, role downgraded: no notification resets the list
	sess.st = as(models.RoleStudent).st
	assert.Nil(t, c.Filter(""))
}

func TestClose_DropsListAndUnsubscribes(t *testing.T) {
	sess := &liveSession{st: as(models.RoleModerator).st}
	api := &fakeAPI{list: []models.Exchange{nested(1, "Bia", "Caio", "Iracema", "O Cortiço")}}
	c := NewController(sess, api, logging.Discard())
	require.NoError(t, c.Load(context.Background()))

	c.Close()
	assert.Empty(t, c.Filter(""))
	assert.Nil(t, sess.subs)
}
