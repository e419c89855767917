package mutation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/notification"
)

type fakeSink struct {
	mu     sync.Mutex
	events []notification.Event
}

func (s *fakeSink) Notify(event notification.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func newTestExecutor(serverURL string, sink notification.Sink) *Executor {
	return New(api.NewDefaultClient(serverURL, "", log.NewLogger()), sink)
}

func Test_Post_Success_ServerMessage(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "Appointment scheduled successfully.", "id": "a1"}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	executor := newTestExecutor(svr.URL, sink)

	payload, err := executor.Post(context.Background(), "/appointments", api.NewAppointment{
		PatientID: "N001",
		DateTime:  "2026-09-01T09:00:00",
		Type:      "Initial Screening",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.False(t, executor.IsPosting())
	assert.Empty(t, executor.Err())

	require.Len(t, sink.events, 1)
	assert.Equal(t, "Success", sink.events[0].Title)
	assert.Equal(t, "Appointment scheduled successfully.", sink.events[0].Description)
	assert.Equal(t, notification.VariantDefault, sink.events[0].Variant)
}

func Test_Post_Success_GenericConfirmation(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	executor := newTestExecutor(svr.URL, sink)

	_, err := executor.Post(context.Background(), "/appointments", nil)

	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "Operation completed successfully.", sink.events[0].Description)
}

func Test_Post_HTTPError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "Patient ID N001 already exists."}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	executor := newTestExecutor(svr.URL, sink)

	payload, err := executor.Post(context.Background(), "/patients", api.NewPatient{NeonateID: "N001"})

	require.Error(t, err)
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.NotEmpty(t, payload)
	assert.False(t, executor.IsPosting())
	assert.Equal(t, "Patient ID N001 already exists.", executor.Err())

	require.Len(t, sink.events, 1)
	assert.Equal(t, "Operation Failed", sink.events[0].Title)
	assert.Equal(t, notification.VariantDestructive, sink.events[0].Variant)
}

func Test_Post_ConnectionError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svr.Close()
	sink := &fakeSink{}
	executor := newTestExecutor(svr.URL, sink)

	payload, err := executor.Post(context.Background(), "/patients", nil)

	require.Error(t, err)
	var connErr *api.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Nil(t, payload)
	assert.False(t, executor.IsPosting())
	assert.Contains(t, executor.Err(), "could not connect to the server")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "Connection Failed", sink.events[0].Title)
}
