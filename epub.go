// Epub export: render a conversation as an epub3 with a generated cover,
// a contents page, and one chapter per turn. Chapters are generated from
// content items, so no arbitrary page HTML has to be laundered into XHTML.
package main

import (
	"encoding/base64"
	"fmt"
	gohtml "html"
	"strings"

	epub "github.com/go-shiori/go-epub"
)

const epubCSS = `body { margin: 1em; line-height: 1.5; }
img { max-width: 100%; height: auto; }
pre { white-space: pre-wrap; word-wrap: break-word; font-size: 0.85em; }
h1 { font-size: 1.3em; margin-top: 1.5em; }
.cover img { width: 100%; }
.toc { list-style-type: none; padding-left: 0; }
.toc li { margin-bottom: 0.8em; }
.toc a { text-decoration: none; }`

// buildEpub writes an epub3 for the conversation to outputPath.
func buildEpub(turns []turn, platform, title, outputPath string) error {
	e, err := epub.NewEpub(title)
	if err != nil {
		return fmt.Errorf("creating epub: %w", err)
	}
	e.SetLang("en")
	e.SetAuthor("chatmd")

	cssDataURI := "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte(epubCSS))
	cssPath, err := e.AddCSS(cssDataURI, "styles.css")
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not add CSS: %v\n", err)
		cssPath = ""
	}

	addCoverPage(e, title, len(turns), cssPath)

	if _, err := e.AddSection(buildContents(turns, platform), "Contents", "contents.xhtml", cssPath); err != nil {
		fmt.Fprintf(logOut, "Warning: could not add contents page: %v\n", err)
	}

	for i, t := range turns {
		label := turnLabel(t, platform)
		body := "<h1>" + gohtml.EscapeString(label) + "</h1>\n" + turnXHTML(e, t, platform, i+1)
		filename := fmt.Sprintf("turn%03d.xhtml", i+1)
		chTitle := fmt.Sprintf("%d. %s", i+1, label)
		if _, err := e.AddSection(body, chTitle, filename, cssPath); err != nil {
			fmt.Fprintf(logOut, "Warning: could not add section %q: %v\n", chTitle, err)
		}
	}

	if err := e.Write(outputPath); err != nil {
		return fmt.Errorf("writing epub: %w", err)
	}
	return nil
}

func turnLabel(t turn, platform string) string {
	if t.role == roleAssistant {
		return assistantLabel(platform)
	}
	return "User"
}

// addCoverPage generates the cover image and registers it as the first
// section. Cover failures are cosmetic, never fatal.
func addCoverPage(e *epub.Epub, title string, turnCount int, cssPath string) {
	pngBytes, err := generateCover(title, turnCount)
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not generate cover: %v\n", err)
		return
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	imgPath, err := e.AddImage(uri, "cover.png")
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not add cover image: %v\n", err)
		return
	}
	body := fmt.Sprintf(`<div class="cover"><img src="%s" alt="Cover"/></div>`, imgPath)
	if _, err := e.AddSection(body, "Cover", "cover.xhtml", cssPath); err != nil {
		fmt.Fprintf(logOut, "Warning: could not add cover page: %v\n", err)
	}
}

// buildContents generates the front-matter list of turns.
func buildContents(turns []turn, platform string) string {
	var b strings.Builder
	b.WriteString("<h1>Contents</h1>\n<ol class=\"toc\">\n")
	for i, t := range turns {
		label := fmt.Sprintf("%d. %s", i+1, turnLabel(t, platform))
		fmt.Fprintf(&b, "<li><a href=\"turn%03d.xhtml\">%s</a></li>\n",
			i+1, gohtml.EscapeString(label))
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// turnXHTML renders one turn's content items as chapter XHTML. Text runs
// become paragraphs, code blocks keep their pre/code structure, images are
// embedded through the optimization pipeline.
func turnXHTML(e *epub.Epub, t turn, platform string, chapter int) string {
	var b strings.Builder
	imgIdx := 0
	for _, item := range turnItems(t, platform) {
		switch it := item.(type) {
		case textItem:
			for _, para := range strings.Split(it.content, "\n\n") {
				para = strings.TrimSpace(para)
				if para == "" {
					continue
				}
				b.WriteString("<p>")
				b.WriteString(gohtml.EscapeString(para))
				b.WriteString("</p>\n")
			}
		case codeBlockItem:
			b.WriteString(`<pre><code class="language-`)
			b.WriteString(gohtml.EscapeString(it.language))
			b.WriteString(`">`)
			b.WriteString(gohtml.EscapeString(it.content))
			b.WriteString("</code></pre>\n")
		case imageItem:
			path, ok := embedImage(e, it.src, chapter, imgIdx)
			if !ok {
				continue
			}
			imgIdx++
			b.WriteString(`<img src="`)
			b.WriteString(path)
			b.WriteString(`" alt="`)
			b.WriteString(gohtml.EscapeString(it.alt))
			b.WriteString("\"/>\n")
		}
	}
	return b.String()
}
