// Package client is a typed Go client for the Productify REST API. The
// bearer token source is injected at construction time, authenticated list
// reads are served from an in-process cache, and every mutation invalidates
// the collections it affects so the next read refetches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenProvider supplies the bearer token attached to authenticated
// requests. Injecting it here replaces any register-an-interceptor-once
// global state: a Client built without a provider simply performs
// unauthenticated calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to the TokenProvider interface.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// NotProvisioned reports whether the server rejected the call because the
// caller's profile has not been synced yet. The fix is a one-time SyncUser
// call, after which the original request can be repeated by the caller.
func (e *APIError) NotProvisioned() bool {
	return e.StatusCode == http.StatusForbidden && e.Message == "user is not synced with database"
}

// Client talks to the Productify API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	cache   *collectionCache
}

// New creates a client. tokens may be nil for read-only public use.
func New(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		cache:   newCollectionCache(),
	}
}

// SetHTTPClient swaps the underlying HTTP client, e.g. for custom transports.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// User mirrors the server's user shape.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Product mirrors the server's product shape.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	User        *User     `json:"user,omitempty"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Comment mirrors the server's comment shape.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"user,omitempty"`
}

// SyncUserProfile carries the profile fields for SyncUser.
type SyncUserProfile struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// CreateProductInput carries the fields for CreateProduct.
type CreateProductInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// UpdateProductInput is a partial update; nil fields are omitted.
type UpdateProductInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// SyncUser creates or refreshes the caller's local profile.
func (c *Client) SyncUser(ctx context.Context, profile SyncUserProfile) (*User, error) {
	var out struct {
		Data User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/sync", profile, &out, true); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Products lists every product, newest first. Served from cache until a
// mutation invalidates it.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	if cached, ok := c.cache.get(keyProducts); ok {
		return cached.([]Product), nil
	}
	var out struct {
		Data []Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out, false); err != nil {
		return nil, err
	}
	c.cache.put(keyProducts, out.Data)
	return out.Data, nil
}

// MyProducts lists the caller's products, newest first.
func (c *Client) MyProducts(ctx context.Context) ([]Product, error) {
	if cached, ok := c.cache.get(keyMyProducts); ok {
		return cached.([]Product), nil
	}
	var out struct {
		Data []Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/my", nil, &out, true); err != nil {
		return nil, err
	}
	c.cache.put(keyMyProducts, out.Data)
	return out.Data, nil
}

// Product fetches one product with its owner and comments.
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	key := keyProduct(id)
	if cached, ok := c.cache.get(key); ok {
		p := cached.(Product)
		return &p, nil
	}
	var out struct {
		Data Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, nil, &out, false); err != nil {
		return nil, err
	}
	c.cache.put(key, out.Data)
	return &out.Data, nil
}

// CreateProduct creates a product owned by the caller.
func (c *Client) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	var out struct {
		Data Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/products", input, &out, true); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyProducts, keyMyProducts)
	return &out.Data, nil
}

// UpdateProduct applies a partial update to a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*Product, error) {
	var out struct {
		Data Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/products/"+id, input, &out, true); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyProducts, keyMyProducts, keyProduct(id))
	return &out.Data, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/products/"+id, nil, nil, true); err != nil {
		return err
	}
	c.cache.invalidate(keyProducts, keyMyProducts, keyProduct(id))
	return nil
}

// CreateComment comments on a product.
func (c *Client) CreateComment(ctx context.Context, productID, content string) (*Comment, error) {
	var out struct {
		Data Comment `json:"data"`
	}
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/api/comments/"+productID, body, &out, true); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyProduct(productID))
	return &out.Data, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) (*Comment, error) {
	var out struct {
		Data Comment `json:"data"`
	}
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, "/api/comments/"+commentID, body, &out, true); err != nil {
		return nil, err
	}
	c.cache.invalidate(keyProduct(out.Data.ProductID))
	return &out.Data, nil
}

// DeleteComment removes a comment. productID is needed to invalidate the
// cached product detail the comment was embedded in.
func (c *Client) DeleteComment(ctx context.Context, commentID, productID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/comments/"+commentID, nil, nil, true); err != nil {
		return err
	}
	c.cache.invalidate(keyProduct(productID))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("fetch token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
