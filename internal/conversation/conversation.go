// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"sync"
	"time"
)

// =============================================================================
// TYPES
// =============================================================================

// Role identifies the author of an entry.
type Role string

const (
	// RoleUser marks an entry typed by the person chatting.
	RoleUser Role = "user"

	// RoleAgent marks an entry produced by the agent (including error
	// notices surfaced in the transcript).
	RoleAgent Role = "agent"
)

// CopiedResetDelay is how long the copied flag stays set before it clears
// itself.
const CopiedResetDelay = 1200 * time.Millisecond

// Entry is one turn in the conversation.
type Entry struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// Feedback is a snapshot of the feedback state for one entry.
type Feedback struct {
	Liked    bool
	Disliked bool
	Copied   bool
}

// feedbackState is the internal, mutable counterpart of Feedback. copyGen
// counts SetCopied calls so that a stale reset timer from an earlier copy
// cannot clear a newer flag.
type feedbackState struct {
	liked    bool
	disliked bool
	copied   bool
	copyGen  uint64
}

// Conversation is an append-only list of entries plus per-entry feedback.
// All methods are safe for concurrent use.
type Conversation struct {
	mu         sync.Mutex
	entries    []Entry
	feedback   map[int]*feedbackState
	resetDelay time.Duration
}

// New creates an empty conversation.
func New() *Conversation {
	return &Conversation{
		feedback:   make(map[int]*feedbackState),
		resetDelay: CopiedResetDelay,
	}
}

// SetCopiedResetDelay overrides the copied self-reset delay. Zero or
// negative disables the automatic reset.
func (c *Conversation) SetCopiedResetDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetDelay = d
}

// =============================================================================
// ENTRIES
// =============================================================================

// Append adds an entry to the end of the conversation and returns its index.
func (c *Conversation) Append(role Role, content string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{
		Role:    role,
		Content: content,
		Time:    time.Now(),
	})
	return len(c.entries) - 1
}

// Len returns the number of entries.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns a copy of the transcript.
func (c *Conversation) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the entry at index i and whether it exists.
func (c *Conversation) Entry(i int) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.entries) {
		return Entry{}, false
	}
	return c.entries[i], true
}

// =============================================================================
// FEEDBACK
// =============================================================================

// FeedbackFor returns the feedback snapshot for entry i. Indexes without
// recorded feedback (including out-of-range ones) report all flags false.
func (c *Conversation) FeedbackFor(i int) Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.feedback[i]
	if !ok {
		return Feedback{}
	}
	return Feedback{Liked: st.liked, Disliked: st.disliked, Copied: st.copied}
}

// ToggleLike flips the liked flag on entry i, clearing disliked when it
// turns on. Out-of-range indexes are ignored.
func (c *Conversation) ToggleLike(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(i)
	if st == nil {
		return
	}
	st.liked = !st.liked
	if st.liked {
		st.disliked = false
	}
}

// ToggleDislike flips the disliked flag on entry i, clearing liked when it
// turns on. Out-of-range indexes are ignored.
func (c *Conversation) ToggleDislike(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(i)
	if st == nil {
		return
	}
	st.disliked = !st.disliked
	if st.disliked {
		st.liked = false
	}
}

// SetCopied sets the copied flag on entry i and schedules it to clear after
// the reset delay. Copying again before the delay elapses restarts the
// window; only the most recent copy's timer clears the flag.
func (c *Conversation) SetCopied(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state(i)
	if st == nil {
		return
	}
	st.copied = true
	st.copyGen++
	gen := st.copyGen

	if c.resetDelay <= 0 {
		return
	}
	time.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur, ok := c.feedback[i]; ok && cur.copyGen == gen {
			cur.copied = false
		}
	})
}

// state returns the mutable feedback state for entry i, creating it on
// first use. Returns nil for out-of-range indexes. Caller holds c.mu.
func (c *Conversation) state(i int) *feedbackState {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	st, ok := c.feedback[i]
	if !ok {
		st = &feedbackState{}
		c.feedback[i] = st
	}
	return st
}
