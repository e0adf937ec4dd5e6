// Default rule renderers for the five content categories.
//
// Every renderer is total: malformed or empty structure renders as an
// empty fragment rather than failing the conversion.
package main

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

func init() {
	rules.registerDefault(categoryCodeBlock, rule{
		tags:   []string{"pre"},
		render: renderCodeBlock(codeHints{}),
	})
	rules.registerDefault(categoryTable, rule{
		tags:   []string{"table"},
		render: renderTable,
	})
	rules.registerDefault(categoryHeading, rule{
		tags:   []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		render: renderHeading,
	})
	rules.registerDefault(categoryBlockquote, rule{
		tags:   []string{"blockquote"},
		render: renderBlockquote,
	})
	rules.registerDefault(categoryInline, rule{
		tags:   []string{"del", "s", "strike"},
		render: renderStrikethrough,
	})
}

// renderCodeBlock builds a fenced-block renderer for the given shape
// hints. Code text goes out verbatim, never Markdown-escaped.
func renderCodeBlock(hints codeHints) func(converter.Context, converter.Writer, *html.Node) converter.RenderStatus {
	return func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
		cb := classifyCodeBlock(n, hints)
		if strings.TrimSpace(cb.text) == "" {
			// Empty payload: swallow the node instead of emitting bare fences.
			return converter.RenderSuccess
		}
		w.WriteString("\n\n```")
		w.WriteString(cb.language)
		w.WriteString("\n")
		w.WriteString(cb.text)
		w.WriteString("\n```\n\n")
		return converter.RenderSuccess
	}
}

var cellNewlineRe = regexp.MustCompile(`\s*\n\s*`)

// renderTableCell converts a cell's own HTML to Markdown, escapes pipes,
// and collapses newlines so the cell stays on one line. The commonmark
// plugin escapes pipes in text it renders, so those are unescaped first
// to keep the result at exactly one backslash per pipe.
func renderTableCell(ctx converter.Context, cell *html.Node) string {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, cell)
	s := strings.TrimSpace(buf.String())
	s = cellNewlineRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `\|`, "|")
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderTable(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	shape := classifyTable(n)
	if len(shape.header) == 0 {
		return converter.RenderSuccess
	}

	writeRow := func(cells []*html.Node) {
		w.WriteString("|")
		for _, cell := range cells {
			w.WriteString(" ")
			w.WriteString(renderTableCell(ctx, cell))
			w.WriteString(" |")
		}
		w.WriteString("\n")
	}

	w.WriteString("\n\n")
	writeRow(shape.header)
	w.WriteString("|")
	for range shape.header {
		w.WriteString("---|")
	}
	w.WriteString("\n")
	for _, row := range shape.rows {
		writeRow(row)
	}
	w.WriteString("\n")
	return converter.RenderSuccess
}

func renderHeading(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if len(n.Data) != 2 || n.Data[0] != 'h' {
		return converter.RenderTryNext
	}
	level := int(n.Data[1] - '0')
	if level < 1 || level > 6 {
		return converter.RenderTryNext
	}

	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	text := strings.TrimSpace(buf.String())
	if text == "" {
		// Unusual nesting can defeat the generic engine; fall back to the
		// node's raw text content.
		text = strings.TrimSpace(collectText(n))
	}
	if text == "" {
		return converter.RenderSuccess
	}
	text = cellNewlineRe.ReplaceAllString(text, " ")

	w.WriteString("\n\n")
	w.WriteString(strings.Repeat("#", level))
	w.WriteString(" ")
	w.WriteString(text)
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

func renderBlockquote(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	inner := strings.TrimSpace(buf.String())
	if inner == "" {
		return converter.RenderSuccess
	}

	w.WriteString("\n\n")
	for i, line := range strings.Split(inner, "\n") {
		if i > 0 {
			w.WriteString("\n")
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "> ") {
			// Nested blockquotes arrive already prefixed; don't stack.
			w.WriteString("> ")
		}
		w.WriteString(line)
	}
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

func renderStrikethrough(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	var buf bytes.Buffer
	ctx.RenderChildNodes(ctx, &buf, n)
	inner := strings.TrimSpace(buf.String())
	if inner == "" {
		return converter.RenderSuccess
	}
	w.WriteString("~~")
	w.WriteString(inner)
	w.WriteString("~~")
	return converter.RenderSuccess
}
