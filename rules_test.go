package main

import (
	"testing"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

func nopRender(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	return converter.RenderSuccess
}

func TestRuleRegistry_DefaultResolution(t *testing.T) {
	r := newRuleRegistry()
	r.registerDefault(categoryTable, rule{tags: []string{"table"}, render: nopRender})

	ru, ok := r.resolve(categoryTable, platformDefault)
	if !ok {
		t.Fatal("default rule not found")
	}
	if len(ru.tags) != 1 || ru.tags[0] != "table" {
		t.Errorf("tags = %v", ru.tags)
	}
	if ru.category != categoryTable {
		t.Errorf("category = %d, want categoryTable", ru.category)
	}
}

func TestRuleRegistry_UnknownPlatformFallsBack(t *testing.T) {
	r := newRuleRegistry()
	r.registerDefault(categoryHeading, rule{tags: []string{"h1"}, render: nopRender})

	if _, ok := r.resolve(categoryHeading, "mystery-platform"); !ok {
		t.Error("unknown platform should resolve to the default rule")
	}
}

func TestRuleRegistry_PlatformOverride(t *testing.T) {
	r := newRuleRegistry()
	r.registerDefault(categoryCodeBlock, rule{tags: []string{"pre"}, render: nopRender})
	r.registerPlatform(platformGemini, categoryCodeBlock, rule{tags: []string{"code-block"}, render: nopRender})

	ru, ok := r.resolve(categoryCodeBlock, platformGemini)
	if !ok {
		t.Fatal("override not found")
	}
	if ru.tags[0] != "code-block" {
		t.Errorf("tags = %v, want the override's", ru.tags)
	}

	ru, _ = r.resolve(categoryCodeBlock, platformDefault)
	if ru.tags[0] != "pre" {
		t.Errorf("default polluted by override: %v", ru.tags)
	}
}

func TestRuleRegistry_OverrideScopedToCategory(t *testing.T) {
	r := newRuleRegistry()
	r.registerDefault(categoryTable, rule{tags: []string{"table"}, render: nopRender})
	r.registerPlatform(platformClaude, categoryCodeBlock, rule{tags: []string{"pre"}, render: nopRender})

	ru, ok := r.resolve(categoryTable, platformClaude)
	if !ok {
		t.Fatal("table rule not found for platform with unrelated override")
	}
	if ru.tags[0] != "table" {
		t.Errorf("tags = %v", ru.tags)
	}
}

func TestRuleRegistry_LastWriteWins(t *testing.T) {
	r := newRuleRegistry()
	r.registerDefault(categoryInline, rule{tags: []string{"del"}, render: nopRender})
	r.registerDefault(categoryInline, rule{tags: []string{"del", "s"}, render: nopRender})

	ru, _ := r.resolve(categoryInline, platformDefault)
	if len(ru.tags) != 2 {
		t.Errorf("tags = %v, want the replacement rule", ru.tags)
	}
}

func TestRuleRegistry_MissingCategory(t *testing.T) {
	r := newRuleRegistry()
	if _, ok := r.resolve(categoryBlockquote, platformDefault); ok {
		t.Error("resolve on an empty registry should report no rule")
	}
}

func TestGlobalRules_PlatformCodeBlocks(t *testing.T) {
	ru, ok := rules.resolve(categoryCodeBlock, platformClaude)
	if !ok {
		t.Fatal("claude code block rule missing")
	}
	var hasDiv bool
	for _, tag := range ru.tags {
		if tag == "div" {
			hasDiv = true
		}
	}
	if !hasDiv {
		t.Errorf("claude rule should claim div containers, got %v", ru.tags)
	}

	ru, ok = rules.resolve(categoryCodeBlock, platformGemini)
	if !ok {
		t.Fatal("gemini code block rule missing")
	}
	var hasElement bool
	for _, tag := range ru.tags {
		if tag == "code-block" {
			hasElement = true
		}
	}
	if !hasElement {
		t.Errorf("gemini rule should claim code-block elements, got %v", ru.tags)
	}
}

func TestGlobalRules_AllDefaultsRegistered(t *testing.T) {
	for _, c := range allCategories {
		if _, ok := rules.resolve(c, platformDefault); !ok {
			t.Errorf("no default rule for category %d", c)
		}
	}
}
