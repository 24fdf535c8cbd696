// Package client обращается к /readings API.
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
	"time"

	"proby/internal/models"
)

var ErrUnexpectedBody = errors.New("unexpected response body")

// APIError ответ сервера с кодом не 2xx
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client HTTP клиент API показаний
type Client struct {
	baseURL string
	http    *http.Client
}

// New создает клиента; httpClient может быть nil
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Latest получает последние показания (от новых к старым).
// limit == 0 запрашивает все показания, limit < 0 использует лимит сервера.
func (c *Client) Latest(ctx context.Context, limit int) ([]models.Reading, error) {
	u := c.baseURL + "/readings"
	if limit >= 0 {
		u += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var readings []models.Reading
	if err := c.do(ctx, http.MethodGet, u, nil, &readings); err != nil {
		return nil, err
	}
	return readings, nil
}

// Insert отправляет одно показание
func (c *Client) Insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error) {
	body := make(map[string]float64, len(values))
	for f, v := range values {
		body[string(f)] = v
	}

	var reading models.Reading
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/readings", body, &reading); err != nil {
		return models.Reading{}, err
	}
	return reading, nil
}

// Clear удаляет все показания и возвращает число удаленных строк
func (c *Client) Clear(ctx context.Context) (int64, error) {
	var resp struct {
		Message string `json:"message"`
		Deleted int64  `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, c.baseURL+"/readings", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
		}
	}

	return nil
}
