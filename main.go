// chatmd: convert a chat conversation page (Claude, ChatGPT, Gemini) into
// clean Markdown for clipboard pasting, a file, or an epub.
//
// Read a saved page or a share URL:
//
//	chatmd conversation.html
//	chatmd https://chatgpt.com/share/...
//	chatmd -copy https://claude.ai/share/...
//
// Epub mode:
//
//	chatmd -epub -o chat.epub conversation.html
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// logOut is the writer for informational/progress output. In silent mode
// it is set to io.Discard so only errors reach the user.
var logOut io.Writer = os.Stderr

// cliConfig holds parsed command-line options.
type cliConfig struct {
	platform   string
	output     string
	copyMode   bool
	epubMode   bool
	title      string
	ignoreTags []string
	timeout    time.Duration
	userAgent  string
	input      string
}

// loadInput reads the conversation HTML from a URL, a file, or stdin.
func loadInput(cfg cliConfig) ([]byte, *url.URL, error) {
	switch {
	case cfg.input == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, &url.URL{Scheme: "file", Path: "/stdin"}, nil
	case strings.HasPrefix(cfg.input, "http://"), strings.HasPrefix(cfg.input, "https://"):
		return fetchHTML(cfg.input, cfg.timeout, cfg.userAgent)
	default:
		data, err := os.ReadFile(cfg.input)
		if err != nil {
			return nil, nil, err
		}
		abs, err := filepath.Abs(cfg.input)
		if err != nil {
			abs = "/" + cfg.input
		}
		return data, &url.URL{Scheme: "file", Path: abs}, nil
	}
}

// run executes the main application logic, returning any error.
func run(cfg cliConfig) error {
	raw, pageURL, err := loadInput(cfg)
	if err != nil {
		return err
	}

	platform := cfg.platform
	if platform == "" || platform == "auto" {
		platform = detectPlatform(cfg.input, raw)
		fmt.Fprintf(logOut, "Platform: %s\n", platform)
	}

	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	turns := extractTurns(doc, platform)
	title := cfg.title
	if title == "" {
		title = documentTitle(doc)
	}
	if title == "" {
		title = "Conversation"
	}

	if cfg.epubMode {
		if cfg.output == "" {
			return fmt.Errorf("-epub requires -o output.epub")
		}
		if len(turns) == 0 {
			return fmt.Errorf("no conversation turns found; epub export needs a recognized chat page")
		}
		fmt.Fprintf(logOut, "Building epub from %d turns...\n", len(turns))
		if err := buildEpub(turns, platform, title, cfg.output); err != nil {
			return err
		}
		fmt.Fprintf(logOut, "✓ %s (%d turns)\n", cfg.output, len(turns))
		return nil
	}

	var markdown string
	if len(turns) > 0 {
		markdown = "# " + title + "\n\n" + renderTranscript(turns, platform)
	} else {
		fmt.Fprintf(logOut, "No conversation turns found; extracting page content\n")
		content, articleTitle, err := extractArticle(raw, pageURL)
		if err != nil {
			return err
		}
		ignore := append(append([]string(nil), defaultIgnoreTags...), cfg.ignoreTags...)
		markdown, err = convertHTML(content, convertOptions{platform: platform, ignoreTags: ignore})
		if err != nil {
			return err
		}
		if cfg.title == "" && articleTitle != "" {
			title = articleTitle
		}
		markdown = "# " + title + "\n\n" + markdown
	}

	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}

	if cfg.copyMode {
		if err := writeClipboard(markdown); err != nil {
			fmt.Fprintf(logOut, "Warning: %v — copy manually from the output below\n", err)
			os.Stdout.WriteString(markdown)
			return nil
		}
		fmt.Fprintf(logOut, "Copied %s to clipboard\n", humanSize(int64(len(markdown))))
		return nil
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	os.Stdout.WriteString(markdown)
	return nil
}

func main() {
	platform := flag.String("platform", "auto", "Source platform: auto, claude, chatgpt, gemini, default")
	output := flag.String("o", "", "Output file (default: stdout)")
	copyMode := flag.Bool("copy", false, "Copy Markdown to the system clipboard")
	epubMode := flag.Bool("epub", false, "Generate an epub (requires -o)")
	title := flag.String("title", "", "Override the conversation title")
	ignoreTags := flag.String("ignore-tags", "", "Comma-separated extra tag names to drop")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP fetch timeout")
	userAgent := flag.String("user-agent", defaultUA, "HTTP User-Agent header")
	proxy := flag.String("proxy", "", "HTTP proxy URL for fetching (disables TLS fingerprinting)")
	silent := flag.Bool("silent", false, "Suppress all output except errors (for pipeline use)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chatmd [options] <URL|file.html|->\n\n")
		fmt.Fprintf(os.Stderr, "Convert a chat conversation page to clean Markdown.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *silent {
		logOut = io.Discard
	}
	fetchProxyURL = *proxy

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	var extraIgnore []string
	for _, tag := range strings.Split(*ignoreTags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			extraIgnore = append(extraIgnore, strings.ToLower(tag))
		}
	}

	cfg := cliConfig{
		platform:   *platform,
		output:     *output,
		copyMode:   *copyMode,
		epubMode:   *epubMode,
		title:      *title,
		ignoreTags: extraIgnore,
		timeout:    *timeout,
		userAgent:  *userAgent,
		input:      flag.Arg(0),
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
