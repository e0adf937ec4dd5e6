// Transcript extraction: locate the conversation turns on a chat page and
// fold each turn into content items (merged text runs, distinct code
// blocks and images) before rendering the final Markdown document.
package main

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// turn is one conversation turn: who spoke and the subtree holding what
// they said.
type turn struct {
	role string
	node *html.Node
}

// turnMarker ties a role to the node predicate that identifies its turns
// on one platform.
type turnMarker struct {
	role  string
	match func(*html.Node) bool
}

// turnMarkers holds the per-platform turn selectors. The default platform
// has none; unrecognized pages go through the readability fallback.
var turnMarkers = map[string][]turnMarker{
	platformChatGPT: {
		{roleUser, attrEquals("data-message-author-role", "user")},
		{roleAssistant, attrEquals("data-message-author-role", "assistant")},
	},
	platformClaude: {
		{roleUser, classEquals("font-user-message")},
		{roleAssistant, classEquals("font-claude-message")},
	},
	platformGemini: {
		{roleUser, isTag("user-query")},
		{roleAssistant, isTag("model-response")},
	},
}

func attrEquals(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return dom.GetAttributeOr(n, key, "") == val
	}
}

func classEquals(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return hasClass(n, name)
	}
}

// extractTurns walks the document in order and collects conversation
// turns. It does not descend into a matched turn, so nested markers (a
// quoted earlier message, say) don't produce duplicate turns.
func extractTurns(doc *html.Node, platform string) []turn {
	markers := turnMarkers[platform]
	if len(markers) == 0 {
		return nil
	}
	var turns []turn
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, m := range markers {
				if m.match(n) {
					turns = append(turns, turn{role: m.role, node: n})
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return turns
}

// defaultIgnoreTags are interface elements that never carry conversation
// content: copy buttons, icons, embedded scripts.
var defaultIgnoreTags = []string{
	"script", "style", "noscript", "button", "svg", "mat-icon",
}

// turnItems folds one turn into content items. Code blocks and images
// stay distinct; everything between them is converted to Markdown and
// paragraph-joined through addTextItem. The turn's subtree is cloned
// first, so the caller's document survives intact.
func turnItems(t turn, platform string) []contentItem {
	node := cloneTree(t.node)
	ignore := map[string]bool{}
	for _, tag := range defaultIgnoreTags {
		ignore[tag] = true
	}
	pruneTree(node, nil, ignore)
	demoteHeadings(node, 2)

	hints := platformHints(platform)
	var items []contentItem
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		items = appendNodeItems(items, c, platform, hints)
	}
	return items
}

func appendNodeItems(items []contentItem, n *html.Node, platform string, hints codeHints) []contentItem {
	switch {
	case n.Type == html.TextNode:
		return addTextItem(items, n.Data)
	case n.Type != html.ElementNode:
		return items
	case isCodeContainer(n, hints):
		cb := classifyCodeBlock(n, hints)
		if strings.TrimSpace(cb.text) != "" {
			items = append(items, codeBlockItem{language: cb.language, content: cb.text})
		}
		return items
	case n.Data == "img":
		if src := dom.GetAttributeOr(n, "src", ""); src != "" {
			items = append(items, imageItem{src: src, alt: dom.GetAttributeOr(n, "alt", "")})
		}
		return items
	case containsStructured(n, hints):
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			items = appendNodeItems(items, c, platform, hints)
		}
		return items
	default:
		md := convertNode(n, convertOptions{platform: platform})
		return addTextItem(items, md)
	}
}

// isCodeContainer reports whether a node is the top of a code block shape
// for the platform.
func isCodeContainer(n *html.Node, hints codeHints) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return n.Data == "pre" || n.Data == "code-block" || hasClass(n, hints.payloadClass)
}

// containsStructured reports whether any descendant is a code block or an
// image, which forces the walk to split the subtree instead of converting
// it whole.
func containsStructured(n *html.Node, hints codeHints) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if isCodeContainer(c, hints) || c.Data == "img" {
				return true
			}
			if containsStructured(c, hints) {
				return true
			}
		}
	}
	return false
}

// demoteHeadings shifts every heading in the subtree down by the given
// number of levels, clamped at h6, so in-turn headings sit below the
// per-turn headers.
func demoteHeadings(n *html.Node, shift int) {
	if n.Type == html.ElementNode && len(n.Data) == 2 && n.Data[0] == 'h' {
		if level := int(n.Data[1] - '0'); level >= 1 && level <= 6 {
			level += shift
			if level > 6 {
				level = 6
			}
			tag := []byte{'h', byte('0' + level)}
			n.Data = string(tag)
			n.DataAtom = atom.Lookup(tag)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		demoteHeadings(c, shift)
	}
}

// itemsMarkdown renders an item list as a Markdown fragment.
func itemsMarkdown(items []contentItem) string {
	var parts []string
	for _, item := range items {
		switch it := item.(type) {
		case textItem:
			parts = append(parts, it.content)
		case codeBlockItem:
			parts = append(parts, "```"+it.language+"\n"+it.content+"\n```")
		case imageItem:
			parts = append(parts, "!["+it.alt+"]("+it.src+")")
		}
	}
	return strings.Join(parts, "\n\n")
}

// assistantLabel names the assistant turn header for a platform.
func assistantLabel(platform string) string {
	switch platform {
	case platformClaude:
		return "Claude"
	case platformChatGPT:
		return "ChatGPT"
	case platformGemini:
		return "Gemini"
	}
	return "Assistant"
}

// renderTranscript produces the full Markdown document for a conversation.
func renderTranscript(turns []turn, platform string) string {
	var b strings.Builder
	for _, t := range turns {
		label := "User"
		if t.role == roleAssistant {
			label = assistantLabel(platform)
		}
		body := itemsMarkdown(turnItems(t, platform))
		if body == "" {
			continue
		}
		b.WriteString("## ")
		b.WriteString(label)
		b.WriteString("\n\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return ""
	}
	return out + "\n"
}

// documentTitle reads the page <title>, trimming the platform suffix chat
// apps append ("… - Claude", "… | Gemini").
func documentTitle(doc *html.Node) string {
	el := findNode(doc, isTag("title"))
	if el == nil {
		return ""
	}
	title := strings.TrimSpace(collectText(el))
	for _, sep := range []string{" - ", " | ", " – "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	return strings.TrimSpace(title)
}
