package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smolyakovd/inkpad/internal/client/models"
	"github.com/smolyakovd/inkpad/internal/logging"
)

// HTTPClient talks to the knowledge-base REST API. The credential is pulled
// from the injected TokenProvider on every authenticated call, never from
// ambient state.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	creds   TokenProvider
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, creds TokenProvider, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
		log:     log,
	}
}

// errorBody is the JSON error envelope the server uses on failures.
type errorBody struct {
	Error string `json:"error"`
}

// do issues a request and decodes a 2xx JSON response into out (when out is
// non-nil). When authed is true the bearer token is attached; a missing or
// expired token fails fast with ErrUnauthorized before any network I/O.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.creds.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapStatus(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// mapStatus translates non-success responses into package sentinels so
// callers can branch with errors.Is.
func (c *HTTPClient) mapStatus(resp *http.Response) error {
	var eb errorBody
	json.NewDecoder(resp.Body).Decode(&eb) //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		if eb.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, nil, false)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp, false); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*models.Health, error) {
	var h models.Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &h, false); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, nil, &docs, true); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+strconv.FormatInt(id, 10), nil, nil, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) CreateDocument(ctx context.Context, p models.DocumentPayload) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodPost, "/api/documents", nil, p, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) UpdateDocument(ctx context.Context, id int64, p models.DocumentPayload) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodPut, "/api/documents/"+strconv.FormatInt(id, 10), nil, p, &doc, true); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *HTTPClient) ListVersions(ctx context.Context, id int64) ([]models.Version, error) {
	var versions []models.Version
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+strconv.FormatInt(id, 10)+"/versions", nil, nil, &versions, true); err != nil {
		return nil, err
	}
	return versions, nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	var users []models.User
	query := url.Values{"q": {q}}
	if err := c.do(ctx, http.MethodGet, "/api/users/search", query, nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) ShareDocument(ctx context.Context, id int64, email, level string) error {
	body := map[string]string{"email": email, "level": level}
	return c.do(ctx, http.MethodPost, "/api/documents/"+strconv.FormatInt(id, 10)+"/permissions", nil, body, nil, true)
}

func (c *HTTPClient) SearchDocuments(ctx context.Context, q string) ([]models.Document, error) {
	var docs []models.Document
	query := url.Values{"q": {q}}
	if err := c.do(ctx, http.MethodGet, "/api/documents/search", query, nil, &docs, true); err != nil {
		return nil, err
	}
	return docs, nil
}
