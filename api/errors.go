package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a response from the server with a non-success status code.
// Message is the server-provided `message` field when present, or a synthesized
// description of the status otherwise.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// ConnectionError is a transport-level failure: the request never produced an
// HTTP response (DNS failure, refused connection, timeout, malformed body).
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to the server: %s", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type errorBody struct {
	Message string `json:"message"`
}

func unwrapError(statusCode int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return &APIError{StatusCode: statusCode, Message: parsed.Message, Body: body}
	}
	message := fmt.Sprintf("API Error: %d %s", statusCode, http.StatusText(statusCode))
	return &APIError{StatusCode: statusCode, Message: message, Body: body}
}
