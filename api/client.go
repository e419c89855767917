package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client issues calls against the ROP screening API. The base URL is bound at
// construction time and immutable afterward.
type Client struct {
	httpClient  *retryablehttp.Client
	baseURL     string
	accessToken string
	logger      log.Logger
}

// NewClient creates a Client on top of the provided HTTP client.
func NewClient(httpClient *retryablehttp.Client, baseURL string, accessToken string, logger log.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		accessToken: accessToken,
		logger:      logger,
	}
}

// NewDefaultClient creates a Client with the standard HTTP client configuration.
// Retries are disabled: failed calls are surfaced to the user, who re-invokes
// them. Every server response, whatever its status, is handed back to the
// caller instead of being retried away.
func NewDefaultClient(baseURL string, accessToken string, logger log.Logger) *Client {
	httpClient := retryhttp.NewClient(logger)
	httpClient.RetryMax = 0
	httpClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		return false, err
	}
	return NewClient(httpClient, baseURL, accessToken, logger)
}

// BaseURL returns the bound base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call sends a JSON request to baseURL+endpoint and returns the raw response
// body. A nil error means the server responded with a success status. A non-nil
// error is either an *APIError (non-success status, body still returned) or a
// *ConnectionError (no usable response, nil body).
func (c *Client) Call(ctx context.Context, method string, endpoint string, body interface{}) (json.RawMessage, error) {
	var requestBody interface{}
	if body != nil {
		rawBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		requestBody = rawBody
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, requestBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

// Upload sends a multipart/form-data POST carrying the provided form fields and
// a single file part.
func (c *Client) Upload(ctx context.Context, endpoint string, fields map[string]string, fileField string, fileName string, file io.Reader) (json.RawMessage, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileName, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *retryablehttp.Request) (json.RawMessage, error) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer func(body io.ReadCloser) {
		err := body.Close()
		if err != nil {
			c.logger.Printf(err.Error())
		}
	}(resp.Body)

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return rawBody, unwrapError(resp.StatusCode, rawBody)
	}

	return rawBody, nil
}
