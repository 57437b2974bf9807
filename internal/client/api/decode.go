package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Jeffail/gabs/v2"
	"github.com/virapagina/virapagina/internal/client/models"
)

// Keys under which the exchange list has been served, besides a bare array.
var exchangeListKeys = []string{"items", "Exchanges"}

// DecodeExchangeList normalizes the exchange list responses: a bare array,
// {"items": [...]} or {"Exchanges": [...]}. An empty body is an empty list.
// Anything else fails with ErrUnexpectedShape.
func DecodeExchangeList(body []byte) ([]models.Exchange, error) {
	list, err := findList(body, exchangeListKeys...)
	if err != nil {
		return nil, err
	}

	out := make([]models.Exchange, 0, len(list))
	for i, child := range list {
		var ex models.Exchange
		if err := json.Unmarshal(child.Bytes(), &ex); err != nil {
			return nil, shapeError(fmt.Sprintf("exchange #%d", i), err)
		}
		ex.Normalize()
		out = append(out, ex)
	}
	return out, nil
}

// DecodeBookList accepts a bare array or {"items": [...]}.
func DecodeBookList(body []byte) ([]models.Book, error) {
	list, err := findList(body, "items")
	if err != nil {
		return nil, err
	}

	out := make([]models.Book, 0, len(list))
	for i, child := range list {
		var b models.Book
		if err := json.Unmarshal(child.Bytes(), &b); err != nil {
			return nil, shapeError(fmt.Sprintf("book #%d", i), err)
		}
		out = append(out, b)
	}
	return out, nil
}

// decodeExchange reads the body of a mutation. The backend answers either
// with the updated record or with nothing; nil means "no record sent".
func decodeExchange(body []byte) (*models.Exchange, error) {
	parsed, ok, err := parseObject(body)
	if err != nil || !ok || !parsed.Exists("id") {
		return nil, err
	}
	var ex models.Exchange
	if err := json.Unmarshal(parsed.Bytes(), &ex); err != nil {
		return nil, shapeError("exchange", err)
	}
	ex.Normalize()
	return &ex, nil
}

func decodeUser(body []byte) (*models.User, error) {
	parsed, ok, err := parseObject(body)
	if err != nil || !ok || !parsed.Exists("id") {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(parsed.Bytes(), &u); err != nil {
		return nil, shapeError("user", err)
	}
	return &u, nil
}

func findList(body []byte, keys ...string) ([]*gabs.Container, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, shapeError("list", err)
	}

	if _, ok := parsed.Data().([]any); ok {
		return parsed.Children(), nil
	}
	if _, ok := parsed.Data().(map[string]any); ok {
		for _, k := range keys {
			if _, ok := parsed.Search(k).Data().([]any); ok {
				return parsed.Search(k).Children(), nil
			}
		}
	}
	return nil, shapeError(fmt.Sprintf("expected an array or one of %v", keys), nil)
}

// parseObject reports ok=false for an empty body or a JSON value that is
// not an object.
func parseObject(body []byte) (*gabs.Container, bool, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false, nil
	}
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, false, shapeError("object", err)
	}
	if _, ok := parsed.Data().(map[string]any); !ok {
		return nil, false, nil
	}
	return parsed, true, nil
}
