package main

import (
	"strings"
	"testing"
)

const chatgptPage = `<html><head><title>Sorting in Go - ChatGPT</title></head><body>
<div data-message-author-role="user"><p>How do I sort a slice?</p></div>
<div data-message-author-role="assistant">
  <p>Use the slices package:</p>
  <pre><code class="language-go">slices.Sort(s)</code></pre>
  <p>It sorts in place.</p>
</div>
</body></html>`

const claudePage = `<html><head><title>Chat - Claude</title></head><body>
<div class="font-user-message"><p>Write hello world in Python.</p></div>
<div class="font-claude-message">
  <p>Here you go:</p>
  <pre><div><div class="text-text-300">Python</div><div class="code-block__code"><code>print("hello")</code></div></div></pre>
</div>
</body></html>`

const geminiPage = `<html><body>
<user-query><p>Show me a rust function.</p></user-query>
<model-response>
  <p>Sure:</p>
  <code-block><div class="code-block-decoration"><span>Rust</span></div><div><pre><code>fn f() {}</code></pre></div></code-block>
</model-response>
</body></html>`

func TestDetectPlatform_ByURL(t *testing.T) {
	cases := []struct {
		url, want string
	}{
		{"https://claude.ai/share/abc", platformClaude},
		{"https://chatgpt.com/share/abc", platformChatGPT},
		{"https://chat.openai.com/share/abc", platformChatGPT},
		{"https://gemini.google.com/share/abc", platformGemini},
		{"https://example.com/page", platformDefault},
	}
	for _, c := range cases {
		if got := detectPlatform(c.url, nil); got != c.want {
			t.Errorf("detectPlatform(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestDetectPlatform_ByMarkup(t *testing.T) {
	cases := []struct {
		page, want string
	}{
		{chatgptPage, platformChatGPT},
		{claudePage, platformClaude},
		{geminiPage, platformGemini},
		{"<html><body><p>nothing special</p></body></html>", platformDefault},
	}
	for _, c := range cases {
		if got := detectPlatform("saved.html", []byte(c.page)); got != c.want {
			t.Errorf("detectPlatform = %q, want %q", got, c.want)
		}
	}
}

func TestExtractTurns_ChatGPT(t *testing.T) {
	doc := parseFragment(t, chatgptPage)
	turns := extractTurns(doc, platformChatGPT)
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].role != roleUser || turns[1].role != roleAssistant {
		t.Errorf("roles = %s, %s", turns[0].role, turns[1].role)
	}
}

func TestExtractTurns_NestedMarkerNotDuplicated(t *testing.T) {
	src := `<html><body>
	<div class="font-claude-message"><div class="font-user-message">quoted earlier message</div></div>
	</body></html>`
	doc := parseFragment(t, src)
	turns := extractTurns(doc, platformClaude)
	if len(turns) != 1 {
		t.Fatalf("turns = %d, want 1 (no descent into a matched turn)", len(turns))
	}
	if turns[0].role != roleAssistant {
		t.Errorf("role = %s", turns[0].role)
	}
}

func TestExtractTurns_DefaultPlatformHasNone(t *testing.T) {
	doc := parseFragment(t, chatgptPage)
	if turns := extractTurns(doc, platformDefault); len(turns) != 0 {
		t.Errorf("default platform matched %d turns", len(turns))
	}
}

func TestTurnItems_SplitsCodeFromText(t *testing.T) {
	doc := parseFragment(t, chatgptPage)
	turns := extractTurns(doc, platformChatGPT)
	items := turnItems(turns[1], platformChatGPT)

	if len(items) != 3 {
		t.Fatalf("items = %d, want text/code/text: %#v", len(items), items)
	}
	if _, ok := items[0].(textItem); !ok {
		t.Errorf("item 0 is %T", items[0])
	}
	cb, ok := items[1].(codeBlockItem)
	if !ok {
		t.Fatalf("item 1 is %T", items[1])
	}
	if cb.language != "go" || cb.content != "slices.Sort(s)" {
		t.Errorf("code item = %#v", cb)
	}
	if _, ok := items[2].(textItem); !ok {
		t.Errorf("item 2 is %T", items[2])
	}
}

func TestTurnItems_IgnoresCopyButtons(t *testing.T) {
	src := `<html><body><div data-message-author-role="assistant">
	<button>Copy</button><p>answer text</p><svg><path d="M0"/></svg>
	</div></body></html>`
	doc := parseFragment(t, src)
	turns := extractTurns(doc, platformChatGPT)
	items := turnItems(turns[0], platformChatGPT)

	md := itemsMarkdown(items)
	if strings.Contains(md, "Copy") {
		t.Errorf("button text leaked: %q", md)
	}
	if !strings.Contains(md, "answer text") {
		t.Errorf("content lost: %q", md)
	}
}

func TestTurnItems_PreservesOriginalTree(t *testing.T) {
	doc := parseFragment(t, chatgptPage)
	turns := extractTurns(doc, platformChatGPT)
	turnItems(turns[1], platformChatGPT)

	// The source turn still has its pre element after extraction.
	if findNode(turns[1].node, isTag("pre")) == nil {
		t.Error("extraction mutated the source document")
	}
}

func TestTurnItems_Image(t *testing.T) {
	src := `<html><body><div data-message-author-role="user">
	<p>look at this</p><img src="https://example.com/x.png" alt="diagram"/>
	</div></body></html>`
	doc := parseFragment(t, src)
	turns := extractTurns(doc, platformChatGPT)
	items := turnItems(turns[0], platformChatGPT)

	var img imageItem
	var found bool
	for _, item := range items {
		if ii, ok := item.(imageItem); ok {
			img, found = ii, true
		}
	}
	if !found {
		t.Fatalf("no image item in %#v", items)
	}
	if img.src != "https://example.com/x.png" || img.alt != "diagram" {
		t.Errorf("image = %#v", img)
	}
}

func TestTurnItems_DemotesHeadings(t *testing.T) {
	src := `<html><body><div data-message-author-role="assistant">
	<h1>Top</h1><h5>Deep</h5><h6>Bottom</h6>
	</div></body></html>`
	doc := parseFragment(t, src)
	turns := extractTurns(doc, platformChatGPT)
	md := itemsMarkdown(turnItems(turns[0], platformChatGPT))

	if !strings.Contains(md, "### Top") {
		t.Errorf("h1 should land at h3:\n%s", md)
	}
	if !strings.Contains(md, "###### Deep") || !strings.Contains(md, "###### Bottom") {
		t.Errorf("deep headings should clamp at h6:\n%s", md)
	}
}

func TestRenderTranscript_Labels(t *testing.T) {
	doc := parseFragment(t, claudePage)
	turns := extractTurns(doc, platformClaude)
	md := renderTranscript(turns, platformClaude)

	if !strings.Contains(md, "## User") {
		t.Errorf("missing user header:\n%s", md)
	}
	if !strings.Contains(md, "## Claude") {
		t.Errorf("missing assistant header:\n%s", md)
	}
	if !strings.Contains(md, "```python\nprint(\"hello\")\n```") {
		t.Errorf("missing badge-labelled code fence:\n%s", md)
	}
	if !strings.HasSuffix(md, "\n") {
		t.Error("transcript should end with a newline")
	}
}

func TestRenderTranscript_Gemini(t *testing.T) {
	doc := parseFragment(t, geminiPage)
	turns := extractTurns(doc, platformGemini)
	md := renderTranscript(turns, platformGemini)

	if !strings.Contains(md, "## Gemini") {
		t.Errorf("missing assistant header:\n%s", md)
	}
	if !strings.Contains(md, "```rust\nfn f() {}\n```") {
		t.Errorf("missing rust fence:\n%s", md)
	}
}

func TestRenderTranscript_EmptyTurnsSkipped(t *testing.T) {
	src := `<html><body>
	<div data-message-author-role="user"><p>  </p></div>
	<div data-message-author-role="assistant"><p>real reply</p></div>
	</body></html>`
	doc := parseFragment(t, src)
	turns := extractTurns(doc, platformChatGPT)
	md := renderTranscript(turns, platformChatGPT)

	if strings.Contains(md, "## User") {
		t.Errorf("empty turn rendered a header:\n%s", md)
	}
	if !strings.Contains(md, "## ChatGPT") {
		t.Errorf("non-empty turn lost:\n%s", md)
	}
}

func TestAssistantLabel(t *testing.T) {
	cases := map[string]string{
		platformClaude:  "Claude",
		platformChatGPT: "ChatGPT",
		platformGemini:  "Gemini",
		platformDefault: "Assistant",
		"whatever":      "Assistant",
	}
	for platform, want := range cases {
		if got := assistantLabel(platform); got != want {
			t.Errorf("assistantLabel(%q) = %q, want %q", platform, got, want)
		}
	}
}

func TestDocumentTitle(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{`<html><head><title>My Chat - Claude</title></head></html>`, "My Chat"},
		{`<html><head><title>Notes | Gemini</title></head></html>`, "Notes"},
		{`<html><head><title>Plain Title</title></head></html>`, "Plain Title"},
		{`<html><head></head><body></body></html>`, ""},
	}
	for _, c := range cases {
		doc := parseFragment(t, c.src)
		if got := documentTitle(doc); got != c.want {
			t.Errorf("documentTitle(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestDemoteHeadings_Clamp(t *testing.T) {
	doc := parseFragment(t, `<div><h2>a</h2><h6>b</h6></div>`)
	demoteHeadings(doc, 2)
	if findNode(doc, isTag("h4")) == nil {
		t.Error("h2 should become h4")
	}
	if findNode(doc, isTag("h6")) == nil {
		t.Error("h6 should stay h6")
	}
	if findNode(doc, isTag("h8")) != nil {
		t.Error("heading demoted past h6")
	}
}
