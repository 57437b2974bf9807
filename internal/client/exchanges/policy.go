package exchanges

import (
	"fmt"
	"strings"

	"github.com/virapagina/virapagina/internal/client/models"
)

// Action is a transition a provider can apply to a proposal.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// Target is the status an exchange ends up in after a.
func (a Action) Target() models.ExchangeStatus {
	switch a {
	case ActionAccept:
		return models.StatusAccepted
	case ActionReject:
		return models.StatusRefused
	}
	return ""
}

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAccept, ActionReject:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Policy decides which transitions a user may apply.
type Policy struct {
	// WaitingApprovalActionable lets the provider also accept or reject
	// exchanges in WAITING_APPROVAL.
	WaitingApprovalActionable bool
}

// CanTransition reports whether user may apply action to ex. Only the
// provider may act, and only while the exchange is still open.
func (p Policy) CanTransition(user *models.User, ex models.Exchange, action Action) bool {
	if user == nil || user.ID == 0 {
		return false
	}
	if action.Target() == "" {
		return false
	}
	if ex.ProviderID != user.ID || ex.RequesterID == user.ID {
		return false
	}
	return p.actionable(ex.Status)
}

func (p Policy) actionable(s models.ExchangeStatus) bool {
	switch s {
	case models.StatusRequested:
		return true
	case models.StatusWaitingApproval:
		return p.WaitingApprovalActionable
	}
	return false
}

// Actions lists the transitions user may apply to ex, in display order.
func (p Policy) Actions(user *models.User, ex models.Exchange) []Action {
	var out []Action
	for _, a := range []Action{ActionAccept, ActionReject} {
		if p.CanTransition(user, ex, a) {
			out = append(out, a)
		}
	}
	return out
}
