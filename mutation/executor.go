package mutation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/notification"
)

// Executor fires a single write operation with its own isolated loading and
// error state. It holds no cached value and never refreshes any store; after a
// successful mutation the caller triggers the dependent Refetch itself.
type Executor struct {
	client *api.Client
	sink   notification.Sink

	mu        sync.RWMutex
	isPosting bool
	postErr   string
}

// New creates an executor for one logical write action.
func New(client *api.Client, sink notification.Sink) *Executor {
	return &Executor{client: client, sink: sink}
}

// IsPosting reports whether a post is in flight.
func (e *Executor) IsPosting() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isPosting
}

// Err returns the failure message of the most recent post, or "".
func (e *Executor) Err() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.postErr
}

// Post sends body as JSON to the endpoint and returns the raw response body.
// A nil error means success; otherwise the error is an *api.APIError (body
// still returned) or an *api.ConnectionError (nil body).
func (e *Executor) Post(ctx context.Context, endpoint string, body interface{}) (json.RawMessage, error) {
	e.mu.Lock()
	e.isPosting = true
	e.postErr = ""
	e.mu.Unlock()

	payload, err := e.client.Call(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			e.fail(apiErr.Message)
			e.sink.Notify(notification.Event{
				Title:       "Operation Failed",
				Description: apiErr.Message,
				Variant:     notification.VariantDestructive,
			})
			return payload, err
		}
		e.fail(err.Error())
		e.sink.Notify(notification.Event{
			Title:       "Connection Failed",
			Description: err.Error(),
			Variant:     notification.VariantDestructive,
		})
		return nil, err
	}

	e.mu.Lock()
	e.isPosting = false
	e.mu.Unlock()

	message := "Operation completed successfully."
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}
	e.sink.Notify(notification.Event{
		Title:       "Success",
		Description: message,
		Variant:     notification.VariantDefault,
	})
	return payload, nil
}

func (e *Executor) fail(message string) {
	e.mu.Lock()
	e.postErr = message
	e.isPosting = false
	e.mu.Unlock()
}
