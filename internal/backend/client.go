// Package backend is the REST client for the ticketing backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// TokenSource returns the bearer token to attach, or "" for none.
type TokenSource func() string

// Client calls the backend endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource attaches the session token to every request.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) { c.token = src }
}

// NewClient builds a client rooted at baseURL. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoginResponse is the backend's answer to a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

// Login exchanges credentials for a token and role.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateUser submits a new user.
func (c *Client) CreateUser(ctx context.Context, req domain.NewUserRequest) error {
	return c.do(ctx, http.MethodPost, "/api/users", req, nil)
}

// ListTickets fetches one window of tickets.
func (c *Client) ListTickets(ctx context.Context, skip, limit int) ([]domain.Ticket, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	tickets := []domain.Ticket{}
	if err := c.do(ctx, http.MethodGet, "/tickets?"+q.Encode(), nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateTicketStatus changes a ticket's status server-side.
func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return c.do(ctx, http.MethodPatch, "/tickets/"+url.PathEscape(id)+"/status", statusRequest{Status: status}, nil)
}

// NotifyTicket asks the backend to email the ticket's requester.
func (c *Client) NotifyTicket(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/tickets/"+url.PathEscape(id)+"/notify", nil, nil)
}

// Ping checks that the backend answers HTTP at all; any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewBackendError(resp.StatusCode, parseDetail(raw))
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// parseDetail pulls the string "detail" out of an error body. Non-string details
// (validation error lists) and unparseable bodies yield "".
func parseDetail(raw []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
