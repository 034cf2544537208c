// Package backend is a client for the remote booking API.
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

	"github.com/Domenick1991/eventbooking/internal/domain"
)

const (
	orderPath     = "/api/booking/order"
	viewPath      = "/api/booking/view"
	greetingsPath = "/api/booking/greetings"
	selfPath      = "/api/booking/self"
	guestPath     = "/api/booking/guest"
)

type envelope[T any] struct {
	Data T `json:"data"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GetOrder asks the backend to issue a payment order for a package.
func (c *Client) GetOrder(ctx context.Context, packageID int) (*domain.Order, error) {
	q := url.Values{"packageid": {strconv.Itoa(packageID)}}
	var out envelope[domain.Order]
	if err := c.getJSON(ctx, orderPath, q, &out); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &out.Data, nil
}

func (c *Client) ViewBookings(ctx context.Context, mobno string) ([]domain.Booking, error) {
	var out envelope[[]domain.Booking]
	if err := c.getJSON(ctx, viewPath, url.Values{"mobno": {mobno}}, &out); err != nil {
		return nil, fmt.Errorf("view bookings: %w", err)
	}
	return out.Data, nil
}

func (c *Client) Greetings(ctx context.Context, mobno string) (*domain.Greeting, error) {
	var out envelope[domain.Greeting]
	if err := c.getJSON(ctx, greetingsPath, url.Values{"mobno": {mobno}}, &out); err != nil {
		return nil, fmt.Errorf("greetings: %w", err)
	}
	return &out.Data, nil
}

// CreateSelf posts a self booking and returns the HTTP status code. Status
// interpretation is left to the caller.
func (c *Client) CreateSelf(ctx context.Context, req domain.SelfBookingRequest) (int, error) {
	return c.postJSON(ctx, selfPath, req)
}

func (c *Client) CreateGuest(ctx context.Context, req domain.GuestBookingRequest) (int, error) {
	return c.postJSON(ctx, guestPath, req)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned %d", domain.ErrBackend, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
