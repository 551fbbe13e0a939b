package mocks

import (
	"sync"

	"github.com/lobbyn/relay/internal/model"
)

// MockSender records payloads and close reasons for tests.
type MockSender struct {
	mu     sync.Mutex
	sent   [][]byte
	closes []model.CloseReason

	// SendErr, when set, is returned from every Send
	SendErr error
}

// NewMockSender creates an empty MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the payload
func (s *MockSender) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendErr != nil {
		return s.SendErr
	}
	s.sent = append(s.sent, payload)
	return nil
}

// Close records the reason
func (s *MockSender) Close(reason model.CloseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes = append(s.closes, reason)
}

// Sent returns all recorded payloads
func (s *MockSender) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

// LastSent returns the most recent payload, or nil
func (s *MockSender) LastSent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

// Closes returns every recorded close reason
func (s *MockSender) Closes() []model.CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CloseReason, len(s.closes))
	copy(out, s.closes)
	return out
}

// LastClose returns the most recent close reason, if any
func (s *MockSender) LastClose() (model.CloseReason, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.closes) == 0 {
		return model.CloseReason{}, false
	}
	return s.closes[len(s.closes)-1], true
}
