package dispatch

import (
	"context"
	"sync"
)

// Sequential runs one invocation at a time. Server shells wrap their
// dispatcher in it so concurrent requests are serialized.
type Sequential struct {
	mu   sync.Mutex
	next Service
}

// Serialize wraps next.
func Serialize(next Service) *Sequential {
	return &Sequential{next: next}
}

// Dispatch implements Service.
func (s *Sequential) Dispatch(ctx context.Context, tool string, args map[string]any) Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next.Dispatch(ctx, tool, args)
}
