package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/virapagina/virapagina/internal/client/api"
	"github.com/virapagina/virapagina/internal/client/exchanges"
	"github.com/virapagina/virapagina/internal/client/models"
	"github.com/virapagina/virapagina/internal/client/moderation"
	"github.com/virapagina/virapagina/internal/client/services"
)

var errNotLoggedIn = errors.New("not logged in")

// usageError is returned for malformed command arguments.
type usageError struct {
	usage string
}

func (e usageError) Error() string { return "usage: " + e.usage }

func usage(u string) error { return usageError{usage: u} }

var messages = []struct {
	target error
	text   string
}{
	{services.ErrInvalidCredentials, "E-mail ou senha inválidos."},
	{services.ErrEmailTaken, "Este e-mail já está cadastrado."},
	{services.ErrPasswordMismatch, "As senhas não coincidem."},
	{services.ErrMissingFields, "Preencha nome, e-mail e senha."},
	{services.ErrEmptyPatch, "Nada para atualizar."},
	{errNotLoggedIn, "Faça login primeiro."},
	{services.ErrNotAuthenticated, "Faça login primeiro."},
	{exchanges.ErrNotAuthenticated, "Faça login primeiro."},
	{exchanges.ErrTransitionInFlight, "Aguarde: outra operação está em andamento."},
	{exchanges.ErrFetchInFlight, "Aguarde: a lista está sendo atualizada."},
	{exchanges.ErrNotPermitted, "Você não pode alterar esta troca."},
	{exchanges.ErrExchangeNotFound, "Troca não encontrada. Atualize a lista com 'l'."},
	{exchanges.ErrSessionChanged, "A sessão mudou durante a operação. Nada foi alterado na lista."},
	{exchanges.ErrNoBooksOffered, "Selecione ao menos um livro para oferecer."},
	{exchanges.ErrOwnBook, "Você não pode solicitar seu próprio livro."},
	{moderation.ErrNotModerator, "Acesso restrito a moderadores."},
	{moderation.ErrExchangeNotFound, "Troca não encontrada. Atualize a lista com 'mod-list'."},
	{api.ErrUnexpectedShape, "Resposta inesperada do servidor. Tente novamente."},
	{api.ErrResponseTooLarge, "A resposta do servidor é grande demais para ser exibida."},
	{api.ErrUnavailable, "Não foi possível conectar ao servidor. Verifique sua conexão e tente novamente."},
	{api.ErrUnauthorized, "Sua sessão não é mais válida. Faça login novamente."},
	{api.ErrForbidden, "Acesso negado."},
	{api.ErrNotFound, "Registro não encontrado no servidor."},
}

// userMessage turns err into the text shown to the user. Connectivity,
// data-shape and server-side refusals are kept apart.
func userMessage(err error) string {
	var ue usageError
	if errors.As(err, &ue) {
		return "Uso: " + ue.usage
	}
	if errors.Is(err, moderation.ErrUnknownStatus) {
		return "Status desconhecido. Use um de: " + statusList()
	}
	for _, m := range messages {
		if errors.Is(err, m.target) {
			return m.text
		}
	}
	var se *api.StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return fmt.Sprintf("O servidor recusou a operação (%d): %s", se.Code, se.Message)
		}
		return fmt.Sprintf("O servidor recusou a operação (%d).", se.Code)
	}
	return "Algo deu errado: " + err.Error()
}

func statusList() string {
	known := models.KnownStatuses()
	out := make([]string, len(known))
	for i, s := range known {
		out[i] = string(s)
	}
	return strings.Join(out, ", ")
}
