package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/notification"
)

// State is a snapshot of a store. Value always holds the last authoritative
// payload, or the configured default before the first successful fetch; it is
// never invalidated by a failed call. Err is empty unless the most recent
// attempt failed.
type State[T any] struct {
	Value     T
	IsLoading bool
	Err       string
}

// Config describes a store at construction time.
type Config[T any] struct {
	// Endpoint is the bound resource, relative to the client's base URL.
	Endpoint string
	// Default is the value exposed before the first successful fetch.
	Default T
	// AutoFetch runs a fetch against the bound endpoint during construction.
	AutoFetch bool
}

// Params customizes a single fetch. The zero value is a GET against the bound
// endpoint.
type Params struct {
	// Endpoint overrides the target for this call only; the store stays bound
	// to its original endpoint.
	Endpoint string
	// Method defaults to GET. Non-GET calls with a Body send it as JSON.
	Method string
	Body   interface{}
}

// Store binds one endpoint to a piece of UI state. Fetches are re-entrant and
// unfenced: overlapping fetches race, and the last one to resolve wins.
type Store[T any] struct {
	client   *api.Client
	sink     notification.Sink
	endpoint string

	mu    sync.RWMutex
	state State[T]
}

// New creates a store bound to config.Endpoint. With AutoFetch set, the initial
// fetch runs synchronously, so the returned store exposes a settled state.
func New[T any](ctx context.Context, client *api.Client, sink notification.Sink, config Config[T]) *Store[T] {
	store := &Store[T]{
		client:   client,
		sink:     sink,
		endpoint: config.Endpoint,
		state:    State[T]{Value: config.Default},
	}
	if config.AutoFetch {
		_, _ = store.Fetch(ctx, Params{})
	}
	return store
}

// Endpoint returns the bound endpoint.
func (s *Store[T]) Endpoint() string {
	return s.endpoint
}

// State returns a snapshot of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Value returns the current value.
func (s *Store[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Value
}

// IsLoading reports whether a fetch is in flight.
func (s *Store[T]) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

// Err returns the failure message of the most recent attempt, or "".
func (s *Store[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Err
}

// Fetch issues a call and returns the raw response body. A nil error means the
// server responded with a success status; otherwise the error is an
// *api.APIError (body still returned) or an *api.ConnectionError (nil body).
//
// Value is updated only when the call is authoritative for the bound resource:
// either no endpoint override was given, or the call used GET. A non-GET call
// against an explicit alternate endpoint never touches Value, so a one-off
// mutation routed through this store cannot corrupt the cached resource shape.
func (s *Store[T]) Fetch(ctx context.Context, params Params) (json.RawMessage, error) {
	method := params.Method
	if method == "" {
		method = http.MethodGet
	}
	target := s.endpoint
	if params.Endpoint != "" {
		target = params.Endpoint
	}

	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Err = ""
	s.mu.Unlock()

	payload, err := s.client.Call(ctx, method, target, params.Body)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			s.fail(apiErr.Message)
			s.sink.Notify(notification.Event{
				Title:       "API Error",
				Description: apiErr.Message,
				Variant:     notification.VariantDestructive,
			})
			return payload, err
		}
		s.fail(err.Error())
		s.sink.Notify(notification.Event{
			Title:       "Connection Failed",
			Description: err.Error(),
			Variant:     notification.VariantDestructive,
		})
		return nil, err
	}

	authoritative := params.Endpoint == "" || method == http.MethodGet
	if !authoritative {
		s.mu.Lock()
		s.state.IsLoading = false
		s.mu.Unlock()
		return payload, nil
	}

	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		wrapped := &api.ConnectionError{Err: fmt.Errorf("parse response: %w", err)}
		s.fail(wrapped.Error())
		s.sink.Notify(notification.Event{
			Title:       "Connection Failed",
			Description: wrapped.Error(),
			Variant:     notification.VariantDestructive,
		})
		return nil, wrapped
	}

	s.mu.Lock()
	s.state.Value = value
	s.state.IsLoading = false
	s.mu.Unlock()
	return payload, nil
}

// Refetch is Fetch under its manual-invocation name.
func (s *Store[T]) Refetch(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.Fetch(ctx, params)
}

// Refresh re-pulls the bound resource, discarding the return values; the
// outcome is observable through State. Satisfies upload.Refresher.
func (s *Store[T]) Refresh(ctx context.Context) {
	_, _ = s.Refetch(ctx, Params{})
}

func (s *Store[T]) fail(message string) {
	s.mu.Lock()
	s.state.Err = message
	s.state.IsLoading = false
	s.mu.Unlock()
}
