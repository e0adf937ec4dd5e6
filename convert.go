// Conversion engine: tree-to-Markdown rewrite over a DOM subtree.
//
// The engine walks the tree bottom-up through the converter assembled in
// rules.go. When callers ask for destructive filtering (skip predicate or
// hard-dropped tags) the engine works on a private deep clone, so a source
// tree can be reused after conversion.
package main

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// convertOptions configure a single conversion call. They are constructed
// per call and never persisted.
type convertOptions struct {
	platform    string
	ignoreTags  []string
	skipElement func(*html.Node) bool
}

// convertNode rewrites a DOM subtree as Markdown. It is total: any input
// tree produces a string, possibly empty. A root without children is a
// no-op, not an error.
func convertNode(root *html.Node, opts convertOptions) string {
	if root == nil || root.FirstChild == nil {
		return ""
	}

	node := root
	if opts.skipElement != nil || len(opts.ignoreTags) > 0 {
		node = cloneTree(root)
		ignore := map[string]bool{}
		for _, tag := range opts.ignoreTags {
			ignore[strings.ToLower(tag)] = true
		}
		pruneTree(node, opts.skipElement, ignore)
	}

	out, err := newConverter(opts.platform).ConvertNode(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// convertHTML parses an HTML string and converts it. Parse errors are the
// only failure mode; the conversion itself cannot fail.
func convertHTML(htmlStr string, opts convertOptions) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}
	return convertNode(doc, opts), nil
}

// cloneTree deep-copies a node and its descendants. The clone has no
// parent or siblings.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

// pruneTree removes every subtree whose top node matches the skip
// predicate or carries an ignored tag. Traversal does not descend into a
// removed subtree, so descendants of a removed node are never tested.
func pruneTree(n *html.Node, skip func(*html.Node) bool, ignore map[string]bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && (ignore[c.Data] || (skip != nil && skip(c))) {
			n.RemoveChild(c)
		} else {
			pruneTree(c, skip, ignore)
		}
		c = next
	}
}
