// Node classification: decide which known markup shape a candidate node
// instantiates. Chat front-ends emit the same semantic element (a code
// block, a table) with different nesting depths, so renderers first run the
// node through an ordered shape cascade and work off the result.
package main

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
)

type codeShape int

const (
	shapeNone codeShape = iota
	shapePayload
	shapeNestedDouble
	shapeNestedSingle
	shapeDirectCode
	shapeRawText
)

// codeBlock is the classification result for a code block candidate.
type codeBlock struct {
	shape    codeShape
	language string
	text     string
}

// codeHints parameterize classification per platform: the class of the
// wrapper that holds the code payload and the class of the language badge.
type codeHints struct {
	payloadClass string
	badgeClass   string
}

// codeShapeProbes is the shape cascade, evaluated top to bottom with early
// exit. Each probe either locates the element holding the code text or
// returns nil to pass the candidate on.
var codeShapeProbes = []struct {
	shape   codeShape
	extract func(n *html.Node, hints codeHints) *html.Node
}{
	{shapePayload, findPayloadCode},
	{shapeNestedDouble, findDoubleNestedCode},
	{shapeNestedSingle, findNestedCode},
	{shapeDirectCode, findDirectCode},
}

// classifyCodeBlock runs the shape cascade over a candidate node and
// resolves the code text and language. It never fails: when no shape
// matches, the whole candidate's text content is treated as code.
func classifyCodeBlock(n *html.Node, hints codeHints) codeBlock {
	for _, probe := range codeShapeProbes {
		el := probe.extract(n, hints)
		if el == nil {
			continue
		}
		return codeBlock{
			shape:    probe.shape,
			language: resolveLanguage(n, el, hints),
			text:     strings.TrimRight(collectText(el), "\n"),
		}
	}
	return codeBlock{
		shape:    shapeRawText,
		language: resolveLanguage(n, nil, hints),
		text:     strings.TrimRight(collectText(n), "\n"),
	}
}

// findPayloadCode matches the explicit payload-wrapper shape: a node (or
// descendant) carrying the platform's payload class. The wrapper's first
// <code> descendant holds the text; the wrapper itself does when there is
// none.
func findPayloadCode(n *html.Node, hints codeHints) *html.Node {
	if hints.payloadClass == "" {
		return nil
	}
	wrapper := findNode(n, func(c *html.Node) bool {
		return hasClass(c, hints.payloadClass)
	})
	if wrapper == nil {
		return nil
	}
	if code := findNode(wrapper, isTag("code")); code != nil {
		return code
	}
	return wrapper
}

// findDoubleNestedCode matches div > div nesting around the code element,
// seen both as pre > div > div > code and div > div > pre > code.
func findDoubleNestedCode(n *html.Node, _ codeHints) *html.Node {
	for _, d1 := range childElements(n, "div") {
		for _, d2 := range childElements(d1, "div") {
			if code := findNode(d2, isTag("code")); code != nil {
				return code
			}
		}
	}
	return nil
}

// findNestedCode matches a single div wrapper holding the code element.
func findNestedCode(n *html.Node, _ codeHints) *html.Node {
	for _, d := range childElements(n, "div") {
		if code := findNode(d, isTag("code")); code != nil {
			return code
		}
	}
	return nil
}

// findDirectCode matches a <code> element that is a direct child.
func findDirectCode(n *html.Node, _ codeHints) *html.Node {
	for _, c := range childElements(n, "code") {
		return c
	}
	return nil
}

// resolveLanguage picks the code language in priority order: the badge
// element's text, a language-*/lang-* class on the code element, then
// "text".
func resolveLanguage(n, codeEl *html.Node, hints codeHints) string {
	if hints.badgeClass != "" {
		scope := n
		if n.Parent != nil {
			// The badge may sit next to the candidate rather than inside it.
			scope = n.Parent
		}
		badge := findNode(scope, func(c *html.Node) bool {
			return hasClass(c, hints.badgeClass)
		})
		if badge != nil {
			if lang := normalizeLanguage(collectText(badge)); lang != "" {
				return lang
			}
		}
	}
	if codeEl != nil {
		if lang := classLanguage(codeEl); lang != "" {
			return lang
		}
	}
	if lang := classLanguage(n); lang != "" {
		return lang
	}
	return "text"
}

// normalizeLanguage cleans badge text into a fence language token.
// Badges carry UI text too ("Copy code"), so anything with spaces or an
// unreasonable length is rejected.
func normalizeLanguage(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 24 || strings.ContainsAny(s, " \t\n") {
		return ""
	}
	return s
}

// classLanguage reads a language-* or lang-* class from an element.
func classLanguage(n *html.Node) string {
	for _, cls := range strings.Fields(dom.GetAttributeOr(n, "class", "")) {
		cls = strings.ToLower(cls)
		if lang, ok := strings.CutPrefix(cls, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(cls, "lang-"); ok {
			return lang
		}
	}
	return ""
}

// tableShape is the classification result for a table: header cells plus
// the body rows whose cell count matches the header's column count.
type tableShape struct {
	header []*html.Node
	rows   [][]*html.Node
}

// classifyTable distinguishes explicit thead/tbody structure from
// headerless tables where the first row is promoted to the header. Body
// rows with a mismatched cell count are skipped, not partially rendered.
func classifyTable(n *html.Node) tableShape {
	var headerRow []*html.Node
	var bodyRows [][]*html.Node

	if thead := findNode(n, isTag("thead")); thead != nil {
		for _, tr := range descendantRows(thead) {
			headerRow = rowCells(tr)
			break
		}
	}

	for _, tr := range descendantRows(n) {
		if insideTag(tr, n, "thead") {
			continue
		}
		cells := rowCells(tr)
		if len(cells) == 0 {
			continue
		}
		if headerRow == nil {
			// Headerless table: promote the first row.
			headerRow = cells
			continue
		}
		bodyRows = append(bodyRows, cells)
	}

	shape := tableShape{header: headerRow}
	for _, row := range bodyRows {
		if len(row) != len(headerRow) {
			continue
		}
		shape.rows = append(shape.rows, row)
	}
	return shape
}

// descendantRows returns the <tr> elements of a table-ish node in document
// order, without crossing into nested tables.
func descendantRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.Data {
			case "tr":
				rows = append(rows, child)
			case "table":
				// nested table: its rows belong to its own shape
			default:
				walk(child)
			}
		}
	}
	walk(n)
	return rows
}

// rowCells returns the td/th children of a row.
func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

// insideTag reports whether n has an ancestor with the given tag below
// (and excluding) root.
func insideTag(n, root *html.Node, tag string) bool {
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

// ---------- small tree helpers ----------

// findNode returns the first node (depth-first, including n itself)
// matching the predicate.
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func isTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// childElements returns the direct element children with the given tag.
func childElements(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

func hasClass(n *html.Node, name string) bool {
	if n.Type != html.ElementNode || name == "" {
		return false
	}
	for _, cls := range strings.Fields(dom.GetAttributeOr(n, "class", "")) {
		if cls == name {
			return true
		}
	}
	return false
}

// collectText extracts the visible text of a subtree, inserting newlines
// at <br> and after block-level wrappers so highlighted code keeps its line
// structure. Line-number gutters added by syntax highlighters are skipped.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if isGutter(dom.GetAttributeOr(c, "class", "")) {
				return
			}
			if c.Data == "br" {
				b.WriteString("\n")
			}
			for child := c.FirstChild; child != nil; child = child.NextSibling {
				walk(child)
			}
			switch c.Data {
			case "p", "div", "li", "tr", "section", "blockquote", "pre",
				"h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
	}
	walk(n)
	return b.String()
}

func isGutter(class string) bool {
	lower := strings.ToLower(class)
	return strings.Contains(lower, "gutter") || strings.Contains(lower, "line-numbers")
}
