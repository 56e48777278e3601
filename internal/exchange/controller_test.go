// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/agentchat/internal/agent"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/identity"
)

// fakeSender records requests and plays back a scripted reply.
type fakeSender struct {
	mu       sync.Mutex
	requests []agent.Request
	resp     *agent.Response
	err      error

	// block, when non-nil, holds Send open until closed.
	block chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, request agent.Request) (*agent.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, request)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func (f *fakeSender) sent() []agent.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]agent.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func newController(sender Sender) *Controller {
	ids := identity.NewStore(identity.NewMemoryScope(), identity.NewMemoryScope())
	return NewController(sender, ids, conversation.New())
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestSubmit_BlankInputIgnored(t *testing.T) {
	sender := &fakeSender{}
	c := newController(sender)

	for _, input := range []string{"", "   ", "\n\t "} {
		if err := c.Submit(context.Background(), input); err != nil {
			t.Errorf("Submit(%q) error: %v", input, err)
		}
	}

	if got := c.Conversation().Len(); got != 0 {
		t.Errorf("conversation has %d entries after blank submits", got)
	}
	if len(sender.sent()) != 0 {
		t.Error("blank submit reached the network")
	}
	if c.Loading() {
		t.Error("loading stuck after blank submit")
	}
}

// =============================================================================
// EXCHANGE TESTS
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	sender := &fakeSender{resp: &agent.Response{OutputData: &agent.OutputData{Content: "hi there"}}}
	c := newController(sender)

	if err := c.Submit(context.Background(), "  hello  "); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	entries := c.Conversation().Entries()
	if len(entries) != 2 {
		t.Fatalf("conversation has %d entries, want 2", len(entries))
	}
	if entries[0].Role != conversation.RoleUser || entries[0].Content != "hello" {
		t.Errorf("user turn = {%s %q}, want trimmed input", entries[0].Role, entries[0].Content)
	}
	if entries[1].Role != conversation.RoleAgent || entries[1].Content != "hi there" {
		t.Errorf("agent turn = {%s %q}", entries[1].Role, entries[1].Content)
	}
	if c.Loading() {
		t.Error("loading still set after Submit returned")
	}
}

func TestSubmit_EnvelopeCarriesIdentity(t *testing.T) {
	sender := &fakeSender{resp: &agent.Response{}}
	c := newController(sender)

	c.Submit(context.Background(), "hello")

	sent := sender.sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d requests, want 1", len(sent))
	}
	req := sent[0]
	if req.UserID == "" || req.SessionID == "" {
		t.Errorf("identifiers missing: user=%q session=%q", req.UserID, req.SessionID)
	}
	if !req.Stateful || req.Stream || req.Verbose {
		t.Errorf("mode flags = stateful:%v stream:%v verbose:%v", req.Stateful, req.Stream, req.Verbose)
	}
	if req.Data.Message.Role != "user" || req.Data.Message.Content != "hello" {
		t.Errorf("message = %+v", req.Data.Message)
	}
}

func TestSubmit_MissingContentFallsBack(t *testing.T) {
	tests := []struct {
		name string
		resp *agent.Response
	}{
		{"no output_data", &agent.Response{}},
		{"empty content", &agent.Response{OutputData: &agent.OutputData{Content: ""}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newController(&fakeSender{resp: tc.resp})
			c.Submit(context.Background(), "hello")

			entries := c.Conversation().Entries()
			if len(entries) != 2 {
				t.Fatalf("conversation has %d entries", len(entries))
			}
			if entries[1].Content != FallbackMessage {
				t.Errorf("agent turn = %q, want fallback", entries[1].Content)
			}
		})
	}
}

func TestSubmit_TransportFailureBecomesAgentTurn(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	c := newController(sender)

	if err := c.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("Submit() error: %v, failures must stay in the conversation", err)
	}

	entries := c.Conversation().Entries()
	if len(entries) != 2 {
		t.Fatalf("conversation has %d entries", len(entries))
	}
	if entries[0].Content != "hello" {
		t.Error("user turn lost on failure")
	}
	if entries[1].Role != conversation.RoleAgent || entries[1].Content != "Error: connection refused" {
		t.Errorf("error turn = {%s %q}", entries[1].Role, entries[1].Content)
	}
	if c.Loading() {
		t.Error("loading stuck after failure")
	}
}

func TestSubmit_HTTP500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := agent.NewClientWithConfig(&agent.ClientConfig{Endpoint: server.URL})
	ids := identity.NewStore(identity.NewMemoryScope(), identity.NewMemoryScope())
	c := NewController(client, ids, conversation.New())

	c.Submit(context.Background(), "hi")

	entries := c.Conversation().Entries()
	if len(entries) != 2 {
		t.Fatalf("conversation has %d entries", len(entries))
	}
	if entries[1].Content != "Error: Server error: 500" {
		t.Errorf("error turn = %q", entries[1].Content)
	}
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	sender := &fakeSender{
		resp:  &agent.Response{OutputData: &agent.OutputData{Content: "late"}},
		block: make(chan struct{}),
	}
	c := newController(sender)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- c.Submit(context.Background(), "first")
	}()

	<-started
	// Wait until the first submit is actually inside Send.
	for len(sender.sent()) == 0 {
		time.Sleep(time.Millisecond)
	}

	if !c.Loading() {
		t.Error("Loading() false during in-flight exchange")
	}
	if err := c.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("re-entrant Submit() = %v, want ErrBusy", err)
	}

	close(sender.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error: %v", err)
	}

	// Only the first submission reached the wire and the transcript.
	if got := len(sender.sent()); got != 1 {
		t.Errorf("sent %d requests, want 1", got)
	}
	entries := c.Conversation().Entries()
	if len(entries) != 2 || entries[0].Content != "first" {
		t.Errorf("entries = %v", entries)
	}
	if c.Loading() {
		t.Error("loading stuck after completion")
	}
}

func TestSubmit_OrderingUserBeforeAgent(t *testing.T) {
	sender := &fakeSender{resp: &agent.Response{OutputData: &agent.OutputData{Content: "reply"}}}
	c := newController(sender)

	for i := 0; i < 5; i++ {
		c.Submit(context.Background(), "turn")
	}

	entries := c.Conversation().Entries()
	if len(entries) != 10 {
		t.Fatalf("conversation has %d entries, want 10", len(entries))
	}
	for i, e := range entries {
		wantRole := conversation.RoleUser
		if i%2 == 1 {
			wantRole = conversation.RoleAgent
		}
		if e.Role != wantRole {
			t.Errorf("entry %d role = %s, want %s", i, e.Role, wantRole)
		}
	}
}
