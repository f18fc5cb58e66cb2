package message

import (
	"context"
	"sync"

	"herald/pkg/platform/sentinel"
)

// InMemory backs the message-store port for development and tests.
type InMemory struct {
	mu       sync.RWMutex
	messages map[string]Message
}

func NewInMemory() *InMemory {
	return &InMemory{messages: make(map[string]Message)}
}

// Put adds or replaces a message.
func (s *InMemory) Put(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.Ref] = msg
	return nil
}

func (s *InMemory) Find(ctx context.Context, ref string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[ref]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &msg, nil
}
