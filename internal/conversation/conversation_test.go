// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"testing"
	"time"
)

// =============================================================================
// ENTRY TESTS
// =============================================================================

func TestAppend_PreservesOrder(t *testing.T) {
	c := New()
	c.Append(RoleUser, "hello")
	c.Append(RoleAgent, "hi there")
	c.Append(RoleUser, "how are you")

	entries := c.Entries()
	if len(entries) != 3 {
		t.Fatalf("Len = %d, want 3", len(entries))
	}

	want := []struct {
		role    Role
		content string
	}{
		{RoleUser, "hello"},
		{RoleAgent, "hi there"},
		{RoleUser, "how are you"},
	}
	for i, w := range want {
		if entries[i].Role != w.role || entries[i].Content != w.content {
			t.Errorf("entry %d = {%s %q}, want {%s %q}",
				i, entries[i].Role, entries[i].Content, w.role, w.content)
		}
	}
}

func TestAppend_ReturnsIndex(t *testing.T) {
	c := New()
	if got := c.Append(RoleUser, "a"); got != 0 {
		t.Errorf("first Append() = %d, want 0", got)
	}
	if got := c.Append(RoleAgent, "b"); got != 1 {
		t.Errorf("second Append() = %d, want 1", got)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	c := New()
	c.Append(RoleUser, "original")

	snapshot := c.Entries()
	snapshot[0].Content = "mutated"

	if entry, _ := c.Entry(0); entry.Content != "original" {
		t.Error("mutating the snapshot changed the conversation")
	}
}

func TestEntry_OutOfRange(t *testing.T) {
	c := New()
	c.Append(RoleUser, "only")

	for _, i := range []int{-1, 1, 100} {
		if _, ok := c.Entry(i); ok {
			t.Errorf("Entry(%d) reported ok for out-of-range index", i)
		}
	}
}

// =============================================================================
// FEEDBACK TESTS
// =============================================================================

func TestFeedbackFor_DefaultsFalse(t *testing.T) {
	c := New()
	c.Append(RoleAgent, "answer")

	fb := c.FeedbackFor(0)
	if fb.Liked || fb.Disliked || fb.Copied {
		t.Errorf("fresh entry feedback = %+v, want all false", fb)
	}

	// Out-of-range indexes behave the same.
	fb = c.FeedbackFor(42)
	if fb.Liked || fb.Disliked || fb.Copied {
		t.Errorf("out-of-range feedback = %+v, want all false", fb)
	}
}

func TestToggleLike_Toggles(t *testing.T) {
	c := New()
	c.Append(RoleAgent, "answer")

	c.ToggleLike(0)
	if !c.FeedbackFor(0).Liked {
		t.Fatal("like not set after first toggle")
	}
	c.ToggleLike(0)
	if c.FeedbackFor(0).Liked {
		t.Fatal("like still set after second toggle")
	}
}

func TestLikeDislike_MutuallyExclusive(t *testing.T) {
	c := New()
	c.Append(RoleAgent, "answer")

	c.ToggleLike(0)
	c.ToggleDislike(0)
	fb := c.FeedbackFor(0)
	if fb.Liked || !fb.Disliked {
		t.Errorf("after like then dislike: %+v, want disliked only", fb)
	}

	c.ToggleLike(0)
	fb = c.FeedbackFor(0)
	if !fb.Liked || fb.Disliked {
		t.Errorf("after dislike then like: %+v, want liked only", fb)
	}
}

func TestToggle_OutOfRangeIsNoOp(t *testing.T) {
	c := New()
	c.ToggleLike(0)
	c.ToggleDislike(-1)
	c.SetCopied(5)

	if got := c.FeedbackFor(0); got.Liked || got.Disliked || got.Copied {
		t.Errorf("feedback recorded for empty conversation: %+v", got)
	}
}

func TestSetCopied_SelfResets(t *testing.T) {
	c := New()
	c.SetCopiedResetDelay(20 * time.Millisecond)
	c.Append(RoleAgent, "answer")

	c.SetCopied(0)
	if !c.FeedbackFor(0).Copied {
		t.Fatal("copied not set immediately after SetCopied")
	}

	deadline := time.Now().Add(time.Second)
	for c.FeedbackFor(0).Copied {
		if time.Now().After(deadline) {
			t.Fatal("copied flag never reset")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSetCopied_RecopyRestartsWindow(t *testing.T) {
	c := New()
	c.SetCopiedResetDelay(60 * time.Millisecond)
	c.Append(RoleAgent, "answer")

	c.SetCopied(0)
	time.Sleep(40 * time.Millisecond)
	// Second copy before the first timer fires. The first timer is now
	// stale and must not clear the flag.
	c.SetCopied(0)
	time.Sleep(40 * time.Millisecond)

	if !c.FeedbackFor(0).Copied {
		t.Error("stale reset timer cleared a newer copied flag")
	}
}

func TestSetCopied_ZeroDelayDisablesReset(t *testing.T) {
	c := New()
	c.SetCopiedResetDelay(0)
	c.Append(RoleAgent, "answer")

	c.SetCopied(0)
	time.Sleep(20 * time.Millisecond)
	if !c.FeedbackFor(0).Copied {
		t.Error("copied flag reset despite disabled delay")
	}
}

func TestFeedback_IndependentPerEntry(t *testing.T) {
	c := New()
	c.Append(RoleAgent, "first")
	c.Append(RoleAgent, "second")

	c.ToggleLike(0)
	c.ToggleDislike(1)

	if fb := c.FeedbackFor(0); !fb.Liked || fb.Disliked {
		t.Errorf("entry 0 feedback = %+v", fb)
	}
	if fb := c.FeedbackFor(1); fb.Liked || !fb.Disliked {
		t.Errorf("entry 1 feedback = %+v", fb)
	}
}
