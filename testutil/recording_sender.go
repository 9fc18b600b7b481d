package testutil

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// RecordingSender collects every message sent to it; safe for concurrent use.
type RecordingSender struct {
	mu       sync.Mutex
	messages []tea.Msg
}

func (s *RecordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *RecordingSender) Messages() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.messages...)
}

// MessagesOf returns the recorded messages of type T in send order.
func MessagesOf[T any](s *RecordingSender) []T {
	var matched []T
	for _, msg := range s.Messages() {
		if typed, ok := msg.(T); ok {
			matched = append(matched, typed)
		}
	}
	return matched
}
