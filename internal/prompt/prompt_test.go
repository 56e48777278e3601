// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"testing"

	"github.com/jeranaias/agentchat/internal/config"
)

func TestFromConfig_DropsUnusable(t *testing.T) {
	configured := []config.PromptConfig{
		{Title: "Pricing", Message: "What does it cost?"},
		{Title: " ", Message: "orphan message"},
		{Title: "orphan title", Message: ""},
		{Title: "  Hours  ", Message: "  When are you open?  "},
	}

	prompts := FromConfig(configured)
	if len(prompts) != 2 {
		t.Fatalf("kept %d prompts, want 2", len(prompts))
	}
	if prompts[1].Title != "Hours" || prompts[1].Message != "When are you open?" {
		t.Errorf("prompt not trimmed: %+v", prompts[1])
	}
}

func TestMatch(t *testing.T) {
	prompts := []Prompt{
		{Title: "Pricing", Message: "What does it cost?"},
		{Title: "Hours", Message: "When are you open?"},
		{Title: "Support", Message: "How do I contact support?"},
	}

	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantOK    bool
	}{
		{"exact", "pricing", "Pricing", true},
		{"exact mixed case", "HOURS", "Hours", true},
		{"exact padded", "  Support  ", "Support", true},
		{"prefix is a real message", "sup", "", false},
		{"typo is a real message", "pricng", "", false},
		{"no match", "weather", "", false},
		{"blank", "   ", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Match(prompts, tc.input)
			if ok != tc.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && got.Title != tc.wantTitle {
				t.Errorf("Match(%q) = %q, want %q", tc.input, got.Title, tc.wantTitle)
			}
		})
	}
}

func TestDefaults_NotEmpty(t *testing.T) {
	if len(Defaults()) == 0 {
		t.Error("no default prompts")
	}
}
