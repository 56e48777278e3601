// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/agentchat/internal/agent"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/identity"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// FallbackMessage is shown when the proxy answers successfully but the
// reply carries no usable content.
const FallbackMessage = "No valid response received from agent."

// ErrorPrefix starts every synthesized error turn.
const ErrorPrefix = "Error: "

// ErrBusy is returned when Submit is called while an exchange is already
// in flight.
var ErrBusy = errors.New("an exchange is already in flight")

// Sender is the transport capability the controller needs. *agent.Client
// satisfies it.
type Sender interface {
	Send(ctx context.Context, request agent.Request) (*agent.Response, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs exchanges against the agent proxy, one at a time.
type Controller struct {
	mu       sync.Mutex
	sending  bool
	sender   Sender
	identity *identity.Store
	conv     *conversation.Conversation
}

// NewController wires a controller over its three collaborators.
func NewController(sender Sender, ids *identity.Store, conv *conversation.Conversation) *Controller {
	return &Controller{
		sender:   sender,
		identity: ids,
		conv:     conv,
	}
}

// Loading reports whether an exchange is currently in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Conversation returns the transcript the controller appends to.
func (c *Controller) Conversation() *conversation.Conversation {
	return c.conv
}

// SessionID returns the session identifier stamped on outgoing envelopes.
func (c *Controller) SessionID() string {
	return c.identity.SessionID()
}

// UserID returns the user identifier stamped on outgoing envelopes.
func (c *Controller) UserID() string {
	return c.identity.UserID()
}

// Submit runs one full exchange for text.
//
// A blank submission is ignored without any state change. A submission
// while another exchange is in flight is rejected with ErrBusy. Every
// other outcome returns nil: the user turn is appended before the network
// call, and the agent turn that follows is either the reply content, the
// fallback message, or a synthesized "Error: ..." entry. The user turn is
// never rolled back.
func (c *Controller) Submit(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.sending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	// Optimistic append: the user sees their message regardless of how
	// the network call ends.
	c.conv.Append(conversation.RoleUser, trimmed)

	request := agent.NewRequest(trimmed, c.identity.UserID(), c.identity.SessionID())

	resp, err := c.sender.Send(ctx, request)
	if err != nil {
		c.conv.Append(conversation.RoleAgent, ErrorPrefix+err.Error())
		return nil
	}

	if content, ok := resp.Content(); ok {
		c.conv.Append(conversation.RoleAgent, content)
	} else {
		c.conv.Append(conversation.RoleAgent, FallbackMessage)
	}
	return nil
}
