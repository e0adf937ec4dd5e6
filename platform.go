// Platform identifiers and the markup-shape overrides tuned to each chat
// front-end. ChatGPT markup carries language-* classes and conventional
// nesting, so it runs entirely on the default rules.
package main

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

const (
	platformClaude  = "claude"
	platformChatGPT = "chatgpt"
	platformGemini  = "gemini"
	platformDefault = "default"
)

// claudeCodeHints: Claude wraps the code payload in div.code-block__code
// and shows the language in a small badge div next to it.
var claudeCodeHints = codeHints{
	payloadClass: "code-block__code",
	badgeClass:   "text-text-300",
}

// geminiCodeHints: Gemini emits a <code-block> custom element whose
// decoration bar holds the language label.
var geminiCodeHints = codeHints{
	badgeClass: "code-block-decoration",
}

func init() {
	rules.registerPlatform(platformClaude, categoryCodeBlock, rule{
		tags:   []string{"pre", "div"},
		render: claudeCodeRenderer,
	})
	rules.registerPlatform(platformGemini, categoryCodeBlock, rule{
		tags:   []string{"code-block", "pre"},
		render: renderCodeBlock(geminiCodeHints),
	})
}

// claudeCodeRenderer handles pre blocks plus bare payload divs, which
// Claude produces when a code block streams in outside a pre wrapper.
// Divs without the payload class are left to later handlers.
func claudeCodeRenderer(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if n.Data == "div" && !hasClass(n, claudeCodeHints.payloadClass) {
		return converter.RenderTryNext
	}
	return renderCodeBlock(claudeCodeHints)(ctx, w, n)
}

// platformHints returns the code shape hints for a platform, used by the
// structured extraction path in transcript.go.
func platformHints(platform string) codeHints {
	switch platform {
	case platformClaude:
		return claudeCodeHints
	case platformGemini:
		return geminiCodeHints
	}
	return codeHints{}
}

// detectPlatform identifies the originating chat application from the
// source URL host, then from distinctive markers in the markup. Anything
// unrecognized converts under the default rules.
func detectPlatform(rawURL string, htmlBytes []byte) string {
	if u, err := url.Parse(rawURL); err == nil {
		host := strings.ToLower(u.Hostname())
		switch {
		case strings.HasSuffix(host, "claude.ai"):
			return platformClaude
		case strings.HasSuffix(host, "chatgpt.com"), strings.HasSuffix(host, "chat.openai.com"):
			return platformChatGPT
		case strings.HasSuffix(host, "gemini.google.com"):
			return platformGemini
		}
	}
	switch {
	case bytes.Contains(htmlBytes, []byte("data-message-author-role")):
		return platformChatGPT
	case bytes.Contains(htmlBytes, []byte("font-claude-message")),
		bytes.Contains(htmlBytes, []byte("code-block__code")):
		return platformClaude
	case bytes.Contains(htmlBytes, []byte("<model-response")),
		bytes.Contains(htmlBytes, []byte("<user-query")):
		return platformGemini
	}
	return platformDefault
}
