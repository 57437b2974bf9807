package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/virapagina/virapagina/internal/client/models"
)

type transitionBody struct {
	UserID int64 `json:"userId"`
}

type statusBody struct {
	Status models.ExchangeStatus `json:"status"`
}

func exchangePath(id int64, suffix ...string) string {
	p := "/exchanges/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

// ListUserExchanges returns the exchanges userID takes part in.
func (c *Client) ListUserExchanges(ctx context.Context, userID int64) ([]models.Exchange, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, path: "/exchanges/user/" + strconv.FormatInt(userID, 10)})
	if err != nil {
		return nil, err
	}
	return DecodeExchangeList(body)
}

// ListAllExchanges returns every exchange. Moderators only.
func (c *Client) ListAllExchanges(ctx context.Context) ([]models.Exchange, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, path: "/exchanges"})
	if err != nil {
		return nil, err
	}
	return DecodeExchangeList(body)
}

// AcceptExchange accepts exchange id on behalf of userID. The returned
// record is nil when the backend answers with an empty body.
func (c *Client) AcceptExchange(ctx context.Context, id, userID int64) (*models.Exchange, error) {
	return c.patchExchange(ctx, exchangePath(id, "accept"), transitionBody{UserID: userID})
}

// RejectExchange is AcceptExchange's counterpart.
func (c *Client) RejectExchange(ctx context.Context, id, userID int64) (*models.Exchange, error) {
	return c.patchExchange(ctx, exchangePath(id, "reject"), transitionBody{UserID: userID})
}

// SetExchangeStatus overrides the status of an exchange. Moderators only.
func (c *Client) SetExchangeStatus(ctx context.Context, id int64, status models.ExchangeStatus) (*models.Exchange, error) {
	return c.patchExchange(ctx, exchangePath(id), statusBody{Status: status})
}

func (c *Client) patchExchange(ctx context.Context, path string, payload any) (*models.Exchange, error) {
	body, err := c.do(ctx, call{method: http.MethodPatch, path: path, body: payload})
	if err != nil {
		return nil, err
	}
	return decodeExchange(body)
}

// DeleteExchange removes an exchange. Moderators only.
func (c *Client) DeleteExchange(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: exchangePath(id)})
	return err
}

// ProposeExchange creates one exchange record. The created record is
// returned when the backend sends it.
func (c *Client) ProposeExchange(ctx context.Context, req models.ProposalRequest) (*models.Exchange, error) {
	body, err := c.do(ctx, call{method: http.MethodPost, path: "/exchanges", body: req})
	if err != nil {
		return nil, err
	}
	return decodeExchange(body)
}
