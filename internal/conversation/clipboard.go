// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "github.com/atotto/clipboard"

// CopyToClipboard copies the content of entry i to the system clipboard and
// marks the entry as copied. The copied flag is set even when the platform
// clipboard is unavailable, so the UI confirmation still shows; the error is
// returned for callers that want to report it.
func (c *Conversation) CopyToClipboard(i int) error {
	entry, ok := c.Entry(i)
	if !ok {
		return nil
	}
	err := clipboard.WriteAll(entry.Content)
	c.SetCopied(i)
	return err
}
