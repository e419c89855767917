package upload

import (
	"bytes"
	"context"
	"io"
	"sync"

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

func (s *fakeSink) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.events))
	for _, event := range s.events {
		titles = append(titles, event.Title)
	}
	return titles
}

func (s *fakeSink) Last() notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

type fakeRefresher struct {
	calls int
}

func (r *fakeRefresher) Refresh(ctx context.Context) {
	r.calls++
}

type memoryFile struct {
	name      string
	mediaType string
	content   []byte
	// sizeBytes overrides len(content) when non-zero, so size-limit tests
	// don't need to allocate megabytes.
	sizeBytes int64
}

func (f memoryFile) Name() string {
	return f.name
}

func (f memoryFile) MediaType() string {
	return f.mediaType
}

func (f memoryFile) Size() int64 {
	if f.sizeBytes > 0 {
		return f.sizeBytes
	}
	return int64(len(f.content))
}

func (f memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.content)), nil
}
