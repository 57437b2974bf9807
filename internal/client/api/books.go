package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/virapagina/virapagina/internal/client/models"
)

// DefaultPageSize is the page size used by the search screen.
const DefaultPageSize = 5

// SearchBooks returns one page of the catalog matching query. page is
// 1-based; limit <= 0 means DefaultPageSize.
func (c *Client) SearchBooks(ctx context.Context, query string, page, limit int) (models.BookPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, call{method: http.MethodGet, path: "/books", query: q})
	if err != nil {
		return models.BookPage{}, err
	}

	var out models.BookPage
	if err := decodeInto(body, "book page", &out); err != nil {
		return models.BookPage{}, err
	}
	if out.Items == nil {
		out.Items = []models.Book{}
	}
	return out, nil
}

// ListUserBooks returns the books owned by userID.
func (c *Client) ListUserBooks(ctx context.Context, userID int64) ([]models.Book, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, path: "/books/user/" + strconv.FormatInt(userID, 10)})
	if err != nil {
		return nil, err
	}
	return DecodeBookList(body)
}
