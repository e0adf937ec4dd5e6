// Rule registry: platform-aware renderer dispatch for the conversion core.
//
// Each rule pairs a content category (table, heading, code block,
// blockquote, inline mark) with the tag names it claims and a renderer.
// Platforms (claude, chatgpt, gemini) may override the default rule for a
// category; everything else falls through to the stock commonmark
// handling.
package main

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
)

type category int

const (
	categoryTable category = iota
	categoryHeading
	categoryCodeBlock
	categoryBlockquote
	categoryInline
)

var allCategories = []category{
	categoryTable,
	categoryHeading,
	categoryCodeBlock,
	categoryBlockquote,
	categoryInline,
}

// rule is a matcher + renderer pair for one content category.
// The renderer signals "no match" by returning RenderTryNext, which hands
// the node to the next registered handler (ultimately the commonmark
// plugin).
type rule struct {
	category category
	tags     []string
	render   func(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus
}

// ruleRegistry resolves the active rule per (category, platform).
// It is populated once at startup and treated as read-only afterwards, so
// concurrent conversions need no locking.
type ruleRegistry struct {
	defaults  map[category]rule
	platforms map[string]map[category]rule
}

func newRuleRegistry() *ruleRegistry {
	return &ruleRegistry{
		defaults:  map[category]rule{},
		platforms: map[string]map[category]rule{},
	}
}

// registerDefault installs the built-in rule for a category.
// Registering twice replaces the earlier rule.
func (r *ruleRegistry) registerDefault(c category, ru rule) {
	ru.category = c
	r.defaults[c] = ru
}

// registerPlatform installs a platform override for a category.
// Last write wins, which lets tests swap rules in.
func (r *ruleRegistry) registerPlatform(platform string, c category, ru rule) {
	ru.category = c
	m, ok := r.platforms[platform]
	if !ok {
		m = map[category]rule{}
		r.platforms[platform] = m
	}
	m[c] = ru
}

// resolve returns the active rule for a category under the given platform.
// Unknown platform names silently resolve to the defaults.
func (r *ruleRegistry) resolve(c category, platform string) (rule, bool) {
	if m, ok := r.platforms[platform]; ok {
		if ru, ok := m[c]; ok {
			return ru, true
		}
	}
	ru, ok := r.defaults[c]
	return ru, ok
}

// rules is the process-wide registry. init funcs in render.go and
// platform.go fill it in; conversions only read it.
var rules = newRuleRegistry()

// newConverter assembles a fresh converter for one conversion call with the
// resolved rule set for the platform registered on top of the base and
// commonmark plugins. PriorityEarly (100) runs before the commonmark
// handlers (PriorityStandard 500), so a resolved rule wins unless it
// returns RenderTryNext.
func newConverter(platform string) *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	for _, c := range allCategories {
		ru, ok := rules.resolve(c, platform)
		if !ok {
			continue
		}
		tagType := converter.TagTypeBlock
		if c == categoryInline {
			tagType = converter.TagTypeInline
		}
		for _, tag := range ru.tags {
			conv.Register.RendererFor(tag, tagType, ru.render, converter.PriorityEarly)
		}
	}
	return conv
}
