package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/stackdock/internal/model"
)

// HTTPClient is a Gateway that talks JSON to a remote source of record
// served at BaseURL (see Server for the routes).
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for baseURL. A nil client uses one with a
// 30 second timeout.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *HTTPClient) CreateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	var out model.Stack
	err := c.do(ctx, OpCreateStack, http.MethodPost, routeStacks, st, &out)
	return out, err
}

func (c *HTTPClient) UpdateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	var out model.Stack
	err := c.do(ctx, OpUpdateStack, http.MethodPut, "/stacks/"+url.PathEscape(st.ID), st, &out)
	return out, err
}

func (c *HTTPClient) DeleteStack(ctx context.Context, id string) error {
	return c.do(ctx, OpDeleteStack, http.MethodDelete, "/stacks/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) CreateCard(ctx context.Context, card model.Card) (model.Card, error) {
	var out model.Card
	err := c.do(ctx, OpCreateCard, http.MethodPost, routeCards, card, &out)
	return out, err
}

func (c *HTTPClient) UpdateCard(ctx context.Context, card model.Card) (model.Card, error) {
	var out model.Card
	err := c.do(ctx, OpUpdateCard, http.MethodPut, "/cards/"+url.PathEscape(card.ID), card, &out)
	return out, err
}

func (c *HTTPClient) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, OpDeleteCard, http.MethodDelete, "/cards/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) MoveCard(ctx context.Context, cardID, toStackID string) (model.Card, error) {
	var out model.Card
	err := c.do(ctx, OpMoveCard, http.MethodPost, "/cards/"+url.PathEscape(cardID)+"/move", moveBody{StackID: toStackID}, &out)
	return out, err
}

// do sends one request. Transport failures and non-2xx responses both come
// back as *Error so the engine can surface a message either way.
func (c *HTTPClient) do(ctx context.Context, op Op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Op: op, Message: "Network error"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		message := eb.Error
		if message == "" {
			message = defaultMessage(op)
		}
		return &Error{Op: op, Message: message, StatusCode: resp.StatusCode}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Message: "Malformed response from server.", StatusCode: resp.StatusCode}
	}
	return nil
}
