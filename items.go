// Content items: structured units of extracted conversation content.
// Callers that style code blocks separately consume these instead of a
// flat Markdown string.
package main

import "strings"

type contentItem interface {
	isContentItem()
}

// textItem is a run of Markdown text. Adjacent text items are always
// merged, so a well-formed item list never holds two in a row.
type textItem struct {
	content string
}

// codeBlockItem is a code block kept distinct from surrounding text.
type codeBlockItem struct {
	language string
	content  string
}

// imageItem references an image by source URL (or data URI).
type imageItem struct {
	src string
	alt string
}

func (textItem) isContentItem()      {}
func (codeBlockItem) isContentItem() {}
func (imageItem) isContentItem()     {}

// addTextItem appends text to an item list. Blank text is a no-op. When
// the list ends in a text item the new text is paragraph-joined onto it,
// preserving the invariant that no two consecutive items are text items
// and no item is empty after trimming.
func addTextItem(items []contentItem, text string) []contentItem {
	text = strings.TrimSpace(text)
	if text == "" {
		return items
	}
	if len(items) > 0 {
		if last, ok := items[len(items)-1].(textItem); ok {
			last.content = last.content + "\n\n" + text
			items[len(items)-1] = last
			return items
		}
	}
	return append(items, textItem{content: text})
}
