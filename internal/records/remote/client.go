package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bizzportal/bizzportal/internal/records"
)

// Config describes the external record service.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client reads record collections from an HTTP data service exposing
// /suppliers, /budgets, /invoices and /documents as JSON arrays.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a resty-backed record client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &Client{httpClient: client}
}

func (c *Client) ListSuppliers(ctx context.Context) ([]records.Supplier, error) {
	var out []records.Supplier
	if err := c.fetch(ctx, "/suppliers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListBudgets(ctx context.Context) ([]records.Budget, error) {
	var out []records.Budget
	if err := c.fetch(ctx, "/budgets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListInvoices(ctx context.Context) ([]records.Invoice, error) {
	var out []records.Invoice
	if err := c.fetch(ctx, "/invoices", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]records.Document, error) {
	var out []records.Document
	if err := c.fetch(ctx, "/documents", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fetch accepts either a bare array or a {"data": [...]} envelope.
func (c *Client) fetch(ctx context.Context, path string, dest any) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return fmt.Errorf("remote: get %s: %w", path, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("remote: get %s: status %d", path, resp.StatusCode())
	}
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	if body[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("remote: decode %s: %w", path, err)
		}
		body = env.Data
		if len(body) == 0 {
			return nil
		}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return nil
}
