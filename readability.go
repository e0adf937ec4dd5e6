package main

import (
	"bytes"
	"fmt"
	"net/url"

	readability "codeberg.org/readeck/go-readability"
)

// extractArticle runs go-readability over a page that has no recognizable
// conversation turns and returns the main content HTML and title. Used as
// the default-platform fallback before whole-document conversion.
func extractArticle(htmlBytes []byte, pageURL *url.URL) (content string, title string, err error) {
	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", "", fmt.Errorf("readability extraction failed: %w", err)
	}
	if article.Content == "" {
		return "", "", fmt.Errorf("readability extracted no content from %s", pageURL)
	}
	return article.Content, article.Title, nil
}
