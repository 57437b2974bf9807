package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/session"
	"github.com/virapagina/virapagina/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var confirm = Confirm

// now is swapped in tests of whoami.
var now = time.Now

// Register prompts for the signup form and creates the account. The user
// logs in afterwards.
func (a *App) Register(ctx context.Context) error {
	var form models.SignupForm
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Nome", &form.Name},
		{"E-mail", &form.Email},
		{"Matrícula (opcional)", &form.UniCard},
		{"Curso (opcional)", &form.Course},
		{"Contato (opcional)", &form.Contact},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword("Senha", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirmation, err := getPassword("Confirme a senha", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	form.Password = string(password)
	form.ConfirmPassword = string(confirmation)

	if err := a.auth.Register(ctx, form); err != nil {
		return err
	}

	printlnFn("Conta criada! Faça login para continuar.")
	return nil
}

// Login prompts for credentials and starts a session. With asModerator the
// backend is asked for a moderator session.
func (a *App) Login(ctx context.Context, asModerator bool) error {
	email, err := getSimpleText(a.reader, "E-mail", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Senha", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Login(ctx, email, password, asModerator)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Olá, %s!", user.Name))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.resetSearch()
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Sessão encerrada.")
	return nil
}

// WhoAmI prints the logged-in user and what is known about the token.
func (a *App) WhoAmI(ctx context.Context) error {
	st := a.session.Current()
	if !st.IsAuthenticated {
		return errNotLoggedIn
	}
	u := st.User
	printlnFn(fmt.Sprintf("#%d %s <%s>", u.ID, u.Name, u.Email))
	if u.Role != "" {
		printlnFn("Perfil:", u.Role)
	}

	info := session.InspectToken(st.Token)
	switch {
	case !info.IsJWT:
		printlnFn("Token: opaco")
	case info.ExpiresAt.IsZero():
		printlnFn("Token: JWT sem expiração")
	case info.Expired(now()):
		printlnFn("Token: expirado em", info.ExpiresAt.Local().Format("02/01/2006 15:04"))
	default:
		printlnFn("Token: válido até", info.ExpiresAt.Local().Format("02/01/2006 15:04"))
	}
	return nil
}

// Profile edits the name and e-mail. Blank answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	st := a.session.Current()
	if !st.IsAuthenticated {
		return errNotLoggedIn
	}

	var patch models.UserPatch
	name, err := getSimpleText(a.reader, fmt.Sprintf("Nome [%s]", st.User.Name), a.out)
	if err != nil {
		return err
	}
	if name != "" && name != st.User.Name {
		patch.Name = &name
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("E-mail [%s]", st.User.Email), a.out)
	if err != nil {
		return err
	}
	if email != "" && email != st.User.Email {
		patch.Email = &email
	}

	user, err := a.auth.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Perfil atualizado: %s <%s>", user.Name, user.Email))
	return nil
}
