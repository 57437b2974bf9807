// Package services contains application services for the Vira a Página
// client. This file defines the authentication service: login, register,
// logout and profile updates, keeping the backend and the local session in
// step.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/virapagina/virapagina/internal/client/api"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid e-mail or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("e-mail already registered")
	ErrMissingFields      = errors.New("name, e-mail and password are required")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrEmptyPatch         = errors.New("nothing to update")
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and start a local session.
//   - Register: create a new account; the caller logs in afterwards.
//   - Logout: end the local session.
//   - UpdateProfile: patch the user on the server, then in the session.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte, asModerator bool) (models.User, error)
	Register(ctx context.Context, form models.SignupForm) error
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch models.UserPatch) (models.User, error)
}

// AuthAPI is the part of the REST client used by the service.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error)
	Signup(ctx context.Context, form models.SignupForm) error
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
}

// SessionStore is the session manager as seen by the service.
type SessionStore interface {
	session.Reader
	Login(ctx context.Context, user models.User, token string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, patch models.UserPatch) error
}

type authService struct {
	api  AuthAPI
	sess SessionStore
}

// NewAuthService constructs an AuthService bound to the given API client and
// session manager.
func NewAuthService(api AuthAPI, sess SessionStore) AuthService {
	return &authService{api: api, sess: sess}
}

// Login authenticates on the server and persists the returned identity and
// token. A 401 becomes ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, email string, password []byte, asModerator bool) (models.User, error) {
	resp, err := a.api.Login(ctx, models.Credentials{
		Email:    email,
		Password: string(password),
		IsMod:    asModerator,
	})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	if err := a.sess.Login(ctx, resp.User, resp.Token); err != nil {
		return models.User{}, fmt.Errorf("session saving error: %w", err)
	}
	return resp.User, nil
}

// Register validates the form locally and creates the account. A 409
// becomes ErrEmailTaken.
func (a *authService) Register(ctx context.Context, form models.SignupForm) error {
	if form.Name == "" || form.Email == "" || form.Password == "" {
		return ErrMissingFields
	}
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}

	if err := a.api.Signup(ctx, form); err != nil {
		if errors.Is(err, api.ErrConflict) {
			return ErrEmailTaken
		}
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Logout ends the local session. The backend keeps no session state.
func (a *authService) Logout(ctx context.Context) error {
	return a.sess.Logout(ctx)
}

// UpdateProfile sends patch to the server and merges it into the session.
// When the server echoes the user back, its fields win.
func (a *authService) UpdateProfile(ctx context.Context, patch models.UserPatch) (models.User, error) {
	cur := a.sess.Current()
	if !cur.IsAuthenticated {
		return models.User{}, ErrNotAuthenticated
	}
	// the id is not editable
	patch.ID = nil
	if patch.Empty() {
		return models.User{}, ErrEmptyPatch
	}

	updated, err := a.api.UpdateUser(ctx, cur.User.ID, patch)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile error: %w", err)
	}

	if updated != nil {
		name, email := updated.Name, updated.Email
		if name != "" {
			patch.Name = &name
		}
		if email != "" {
			patch.Email = &email
		}
	}
	if err := a.sess.UpdateUser(ctx, patch); err != nil {
		return models.User{}, fmt.Errorf("session saving error: %w", err)
	}
	return *a.sess.Current().User, nil
}
