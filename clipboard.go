package main

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// writeClipboard copies text to the system clipboard. Callers fall back to
// printing the text when this fails (headless session, missing xclip), so
// the user can still copy manually.
func writeClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}
