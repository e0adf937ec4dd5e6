package main

import "testing"

func TestAddTextItem_BlankIsNoop(t *testing.T) {
	items := addTextItem(nil, "   \n\t ")
	if len(items) != 0 {
		t.Errorf("blank text added an item: %v", items)
	}
}

func TestAddTextItem_MergesAdjacentText(t *testing.T) {
	items := addTextItem(nil, "first")
	items = addTextItem(items, "second")
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1 merged item", len(items))
	}
	ti, ok := items[0].(textItem)
	if !ok {
		t.Fatalf("item is %T, want textItem", items[0])
	}
	if ti.content != "first\n\nsecond" {
		t.Errorf("content = %q", ti.content)
	}
}

func TestAddTextItem_NoMergeAcrossCode(t *testing.T) {
	items := []contentItem{
		textItem{content: "before"},
		codeBlockItem{language: "go", content: "x := 1"},
	}
	items = addTextItem(items, "after")
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if ti, ok := items[2].(textItem); !ok || ti.content != "after" {
		t.Errorf("tail item = %#v", items[2])
	}
}

// The accumulator invariant: never two text items in a row, never an
// empty item, regardless of input order.
func TestAddTextItem_Invariant(t *testing.T) {
	var items []contentItem
	inputs := []string{"a", "", "b", "  ", "c"}
	for i, in := range inputs {
		items = addTextItem(items, in)
		if i == 2 {
			items = append(items, imageItem{src: "x.png"})
		}
	}

	for i, item := range items {
		ti, isText := item.(textItem)
		if isText && ti.content == "" {
			t.Errorf("item %d is empty text", i)
		}
		if isText && i > 0 {
			if _, prevText := items[i-1].(textItem); prevText {
				t.Errorf("items %d and %d are consecutive text items", i-1, i)
			}
		}
	}
}

func TestItemsMarkdown(t *testing.T) {
	items := []contentItem{
		textItem{content: "intro"},
		codeBlockItem{language: "python", content: "print(1)"},
		imageItem{src: "pic.png", alt: "a pic"},
	}
	got := itemsMarkdown(items)
	want := "intro\n\n```python\nprint(1)\n```\n\n![a pic](pic.png)"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestItemsMarkdown_Empty(t *testing.T) {
	if got := itemsMarkdown(nil); got != "" {
		t.Errorf("got %q", got)
	}
}
