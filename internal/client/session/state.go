package session

import "github.com/virapagina/virapagina/internal/client/models"

// Persisted keys.
const (
	UserKey  = "auth_user"
	TokenKey = "auth_token"
)

// State is a snapshot of the session. IsAuthenticated is true exactly when
// both User and Token are set.
type State struct {
	IsAuthenticated bool
	User            *models.User
	Token           string
}

func authenticated(u models.User, token string) State {
	return State{IsAuthenticated: true, User: &u, Token: token}
}

// clone detaches the snapshot from the manager's copy of the user.
func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// UserID returns the logged-in user's id, if any.
func (s State) UserID() (int64, bool) {
	if !s.IsAuthenticated || s.User == nil {
		return 0, false
	}
	return s.User.ID, true
}

// Reader is the read-only view of the session handed to other components.
type Reader interface {
	Current() State
}
