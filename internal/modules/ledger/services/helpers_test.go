package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories/memory"
)

type memoryStore = memory.Store

func newMemoryStore() *memoryStore {
	return memory.NewStore()
}

// recordingAuditor keeps audit entries for assertions
type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAuditor) Record(ctx context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAuditor) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

// scriptedInvoker answers by matching the system prompt
type scriptedInvoker struct {
	mu      sync.Mutex
	replies map[string]string // system prompt prefix -> reply
	fail    bool
	calls   int
}

func (s *scriptedInvoker) Invoke(ctx context.Context, userMessage, systemPrompt string, history []llm.Message) (*llm.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return nil, errors.New("provider down")
	}
	for prefix, reply := range s.replies {
		if len(systemPrompt) >= len(prefix) && systemPrompt[:len(prefix)] == prefix {
			return &llm.Completion{Reply: reply, TokensUsed: 42, Model: "test-model"}, nil
		}
	}
	return &llm.Completion{Reply: "", TokensUsed: 1, Model: "test-model"}, nil
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return parsed
}
