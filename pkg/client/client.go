// Package client is a typed HTTP client for the storefront REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

// APIError is a non-2xx response. Message is the server's message when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	var res transport.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	var res transport.AuthResponse
	body := transport.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var res userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, patch transport.ProfilePatch) (*models.User, error) {
	var res userEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", nil, patch, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

func productValues(q transport.ProductQuery) url.Values {
	v := url.Values{}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.IncludeInactive {
		v.Set("includeInactive", "true")
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, q transport.ProductQuery) (*transport.ProductPage, error) {
	var res transport.ProductPage
	if err := c.do(ctx, http.MethodGet, "/api/products", productValues(q), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type productEnvelope struct {
	Product *models.Product `json:"product"`
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var res productEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Product, nil
}

func (c *Client) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	var res productEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, req, &res); err != nil {
		return nil, err
	}
	return res.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req transport.PatchProductRequest) (*models.Product, error) {
	var res productEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, req, &res); err != nil {
		return nil, err
	}
	return res.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, nil)
}

type orderEnvelope struct {
	Order *models.Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []models.Order `json:"orders"`
}

func (c *Client) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	var res orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var res ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

func (c *Client) AllOrders(ctx context.Context, q transport.OrderQuery) ([]models.Order, error) {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.From != nil {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(time.RFC3339))
	}

	var res ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/orders/admin/all", v, nil, &res); err != nil {
		return nil, err
	}
	return res.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var res orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	var res orderEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), nil, req, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}
