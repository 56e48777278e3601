// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is the single user turn carried by a request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestData wraps the message inside the envelope's data field.
type RequestData struct {
	Message Message `json:"message"`
}

// Request is the envelope sent to the agent proxy. Stateful is always true
// (the proxy keeps conversation history keyed by the identifiers) and
// Stream is always false (one complete reply per call).
type Request struct {
	Data      RequestData `json:"data"`
	Stateful  bool        `json:"stateful"`
	Stream    bool        `json:"stream"`
	UserID    string      `json:"user_id"`
	SessionID string      `json:"session_id"`
	Verbose   bool        `json:"verbose"`
}

// NewRequest builds the standard envelope for one user message.
func NewRequest(content, userID, sessionID string) Request {
	return Request{
		Data: RequestData{
			Message: Message{Role: "user", Content: content},
		},
		Stateful:  true,
		Stream:    false,
		UserID:    userID,
		SessionID: sessionID,
		Verbose:   false,
	}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// OutputData holds the agent's reply text.
type OutputData struct {
	Content string `json:"content"`
}

// Response is the reply envelope from the agent proxy. OutputData is
// optional; a successful call may still carry no usable content.
type Response struct {
	OutputData *OutputData `json:"output_data"`
}

// Content returns the reply text and whether the response actually carried
// one. Absent output_data and an empty content string both count as
// missing.
func (r *Response) Content() (string, bool) {
	if r == nil || r.OutputData == nil || r.OutputData.Content == "" {
		return "", false
	}
	return r.OutputData.Content, true
}
