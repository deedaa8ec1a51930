package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ordersync/internal/model"
	"ordersync/internal/reconcile"
)

var (
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUnauthorized = errors.New("storefront rejected access token")
)

// ShopifyClient reads orders from the Shopify Admin REST API.
type ShopifyClient struct {
	baseURL    string
	token      string
	apiVersion string
	client     *http.Client
}

func NewShopifyClient(shopURL, token, apiVersion string, timeout time.Duration) *ShopifyClient {
	return &ShopifyClient{
		baseURL:    strings.TrimRight(shopURL, "/"),
		token:      token,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: timeout},
	}
}

type ordersResponse struct {
	Orders []json.RawMessage `json:"orders"`
}

// FetchOrders returns one page of orders of any status. Orders that are not
// JSON objects are dropped with a warning; any transport or status failure
// returns no orders at all.
func (c *ShopifyClient) FetchOrders(ctx context.Context, q reconcile.FetchQuery) ([]model.RawOrder, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("status", "any")
	params.Set("financial_status", "any")
	params.Set("fulfillment_status", "any")
	switch {
	case q.SinceID > 0:
		params.Set("since_id", strconv.FormatInt(q.SinceID, 10))
	case !q.UpdatedAtMin.IsZero():
		params.Set("updated_at_min", q.UpdatedAtMin.Format(time.RFC3339))
	default:
		params.Set("created_at_min", q.CreatedAtMin.Format(time.RFC3339))
	}

	u := fmt.Sprintf("%s/admin/api/%s/orders.json?%s", c.baseURL, c.apiVersion, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var res ordersResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		orders := make([]model.RawOrder, 0, len(res.Orders))
		for i, raw := range res.Orders {
			var o model.RawOrder
			if err := json.Unmarshal(raw, &o); err != nil {
				slog.Warn("skipping undecodable order", "index", i, "error", err)
				continue
			}
			orders = append(orders, o)
		}
		slog.Info("fetched orders", "count", len(orders))
		return orders, nil
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(body))
	}
}
