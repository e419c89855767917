package resource

import (
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

func (s *fakeSink) Events() []notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]notification.Event, len(s.events))
	copy(events, s.events)
	return events
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
