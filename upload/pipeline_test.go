package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropscan/ropscan-go/api"
	"github.com/ropscan/ropscan-go/notification"
)

func newTestPipeline(serverURL string, sink notification.Sink, history Refresher) *Pipeline {
	client := api.NewDefaultClient(serverURL, "", log.NewLogger())
	return New(client, sink, history, log.NewLogger())
}

func threeFiles() []File {
	return []File{
		memoryFile{name: "one.jpg", mediaType: "image/jpeg", content: []byte("1")},
		memoryFile{name: "two.jpg", mediaType: "image/jpeg", content: []byte("2")},
		memoryFile{name: "three.jpg", mediaType: "image/jpeg", content: []byte("3")},
	}
}

func Test_Select_AdmitsAndRejects(t *testing.T) {
	sink := &fakeSink{}
	pipeline := newTestPipeline("http://unused", sink, nil)

	admitted := pipeline.Select(
		memoryFile{name: "ok.png", mediaType: "image/png", content: []byte("img")},
		memoryFile{name: "huge.png", mediaType: "image/png", sizeBytes: MaxFileSizeBytes + 1},
		memoryFile{name: "notes.txt", mediaType: "text/plain", content: []byte("x")},
	)

	assert.Equal(t, 1, admitted)
	queue := pipeline.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, "ok.png", queue[0].Name)

	// One individual rejection event per rejected file.
	assert.Equal(t, []string{"File Rejected", "File Rejected"}, sink.Titles())
}

func Test_Remove(t *testing.T) {
	pipeline := newTestPipeline("http://unused", &fakeSink{}, nil)
	pipeline.Select(threeFiles()...)

	require.NoError(t, pipeline.Remove(1))

	queue := pipeline.Queue()
	require.Len(t, queue, 2)
	assert.Equal(t, "one.jpg", queue[0].Name)
	assert.Equal(t, "three.jpg", queue[1].Name)

	assert.Error(t, pipeline.Remove(5))
	assert.Error(t, pipeline.Remove(-1))
}

func Test_Upload_MissingPatientID(t *testing.T) {
	var requests atomic.Int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer svr.Close()
	sink := &fakeSink{}
	pipeline := newTestPipeline(svr.URL, sink, nil)
	pipeline.Select(threeFiles()...)

	_, _, err := pipeline.Upload(context.Background())

	require.Error(t, err)
	assert.Equal(t, int32(0), requests.Load())
	assert.Equal(t, []string{"Validation Error"}, sink.Titles())
}

func Test_Upload_EmptyQueue(t *testing.T) {
	sink := &fakeSink{}
	pipeline := newTestPipeline("http://unused", sink, nil)
	pipeline.SetPatientID("N001")

	_, _, err := pipeline.Upload(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"Validation Error"}, sink.Titles())
}

func Test_Upload_AllSucceed(t *testing.T) {
	var requests atomic.Int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "N001", r.FormValue("patientId"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "Image uploaded successfully and sent for AI processing.", "imageId": "img", "aiResult": {"status": "Processing"}}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	history := &fakeRefresher{}
	pipeline := newTestPipeline(svr.URL, sink, history)
	// Lower-case input is normalized to the server's record keys.
	pipeline.SetPatientID("n001")
	pipeline.Select(threeFiles()...)

	summary, outcomes, err := pipeline.Upload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, Summary{Attempted: 3, Succeeded: 3}, summary)
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.True(t, outcome.Succeeded)
	}

	last := sink.Last()
	assert.Equal(t, "Upload Complete", last.Title)
	assert.Equal(t, "3 of 3 uploaded", last.Description)
	assert.Equal(t, notification.VariantDefault, last.Variant)

	// The run resets the pipeline and refreshes the history store.
	assert.Empty(t, pipeline.Queue())
	assert.Empty(t, pipeline.PatientID())
	assert.False(t, pipeline.Running())
	assert.Zero(t, pipeline.Progress())
	assert.Equal(t, 1, history.calls)
}

// A single item's rejection does not abort the batch: file #2 fails with an
// HTTP error, file #3 is still attempted.
func Test_Upload_PartialFailure_Continues(t *testing.T) {
	var requests atomic.Int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n == 2 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "Corrupt image data."}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "ok", "aiResult": {"status": "Processing"}}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	pipeline := newTestPipeline(svr.URL, sink, nil)
	pipeline.SetPatientID("N001")
	pipeline.Select(threeFiles()...)

	summary, outcomes, err := pipeline.Upload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, Summary{Attempted: 3, Succeeded: 2}, summary)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Succeeded)
	assert.False(t, outcomes[1].Succeeded)
	assert.Equal(t, "Corrupt image data.", outcomes[1].ServerMessage)
	assert.True(t, outcomes[2].Succeeded)

	last := sink.Last()
	assert.Equal(t, "2 of 3 uploaded", last.Description)
	assert.Equal(t, notification.VariantDestructive, last.Variant)
}

// A transport failure mid-batch abandons all remaining items: only two network
// calls happen, the third file is never sent.
func Test_Upload_TransportFailure_AbortsBatch(t *testing.T) {
	var requests atomic.Int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		if n == 2 {
			hijacker, ok := w.(http.Hijacker)
			if !ok {
				t.Error("response writer does not support hijacking")
				return
			}
			conn, _, err := hijacker.Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "ok", "aiResult": {"status": "Processing"}}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	history := &fakeRefresher{}
	pipeline := newTestPipeline(svr.URL, sink, history)
	pipeline.SetPatientID("N001")
	pipeline.Select(threeFiles()...)

	summary, outcomes, err := pipeline.Upload(context.Background())

	require.Error(t, err)
	var connErr *api.ConnectionError
	require.ErrorAs(t, err, &connErr)

	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, Summary{Attempted: 2, Succeeded: 1}, summary)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Succeeded)
	assert.False(t, outcomes[1].Succeeded)

	assert.Contains(t, sink.Titles(), "Connection Failed")
	last := sink.Last()
	assert.Equal(t, "Upload Complete", last.Title)
	assert.Equal(t, "1 of 3 uploaded", last.Description)

	// Even an aborted run resets the pipeline and refreshes history.
	assert.Empty(t, pipeline.Queue())
	assert.Empty(t, pipeline.PatientID())
	assert.Equal(t, 1, history.calls)
}

func Test_Upload_PerItemNotifications(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "ok", "aiResult": {"status": "Processing"}}`))
	}))
	defer svr.Close()
	sink := &fakeSink{}
	pipeline := newTestPipeline(svr.URL, sink, nil)
	pipeline.SetPatientID("N001")
	pipeline.Select(memoryFile{name: "one.jpg", mediaType: "image/jpeg", content: []byte("1")})

	_, _, err := pipeline.Upload(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"Upload Successful", "Upload Complete"}, sink.Titles())
	assert.Contains(t, sink.events[0].Description, "one.jpg")
	assert.Contains(t, sink.events[0].Description, "Processing")
}
