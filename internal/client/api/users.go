package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/virapagina/virapagina/internal/client/models"
)

// UpdateUser patches the profile of user id. The returned record is nil
// when the backend answers without one.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	body, err := c.do(ctx, call{method: http.MethodPatch, path: "/users/" + strconv.FormatInt(id, 10), body: patch})
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}
