// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// ENVELOPE TESTS
// =============================================================================

func TestNewRequest_Envelope(t *testing.T) {
	req := NewRequest("hello", "user-1", "sess-1")

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded["stateful"] != true {
		t.Error("stateful must be true")
	}
	if decoded["stream"] != false {
		t.Error("stream must be false")
	}
	if decoded["verbose"] != false {
		t.Error("verbose must be false")
	}
	if decoded["user_id"] != "user-1" || decoded["session_id"] != "sess-1" {
		t.Errorf("identifiers = %v / %v", decoded["user_id"], decoded["session_id"])
	}

	msg := decoded["data"].(map[string]any)["message"].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "hello" {
		t.Errorf("message = %v", msg)
	}
}

func TestResponse_Content(t *testing.T) {
	tests := []struct {
		name   string
		resp   *Response
		want   string
		wantOK bool
	}{
		{"nil response", nil, "", false},
		{"missing output_data", &Response{}, "", false},
		{"empty content", &Response{OutputData: &OutputData{Content: ""}}, "", false},
		{"present", &Response{OutputData: &OutputData{Content: "hi"}}, "hi", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.resp.Content()
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Content() = %q, %v; want %q, %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request did not decode: %v", err)
		}
		if req.Data.Message.Content != "ping" {
			t.Errorf("message content = %q", req.Data.Message.Content)
		}

		json.NewEncoder(w).Encode(Response{OutputData: &OutputData{Content: "pong"}})
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{Endpoint: server.URL})
	resp, err := client.Send(context.Background(), NewRequest("ping", "u", "s"))
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	content, ok := resp.Content()
	if !ok || content != "pong" {
		t.Errorf("Content() = %q, %v", content, ok)
	}
}

func TestSend_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{Endpoint: server.URL})
	_, err := client.Send(context.Background(), NewRequest("hi", "u", "s"))
	if err == nil {
		t.Fatal("Send() succeeded on HTTP 500")
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T", err)
	}
	if ce.Type != ErrTypeStatus || ce.StatusCode != 500 {
		t.Errorf("error = %+v", ce)
	}
	if ce.Error() != "Server error: 500" {
		t.Errorf("Error() = %q, want %q", ce.Error(), "Server error: 500")
	}
}

func TestSend_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{Endpoint: server.URL})
	_, err := client.Send(context.Background(), NewRequest("hi", "u", "s"))

	var ce *ClientError
	if !errors.As(err, &ce) || ce.Type != ErrTypeInvalidResponse {
		t.Errorf("error = %v, want invalid response", err)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	// A closed server gives a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := NewClientWithConfig(&ClientConfig{Endpoint: endpoint})
	_, err := client.Send(context.Background(), NewRequest("hi", "u", "s"))
	if !errors.Is(err, ErrConnection) {
		t.Errorf("error = %v, want connection error", err)
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClientWithConfig(&ClientConfig{Endpoint: server.URL})
	if _, err := client.Send(ctx, NewRequest("hi", "u", "s")); err == nil {
		t.Fatal("Send() succeeded with cancelled context")
	}
}
