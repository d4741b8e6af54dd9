package hnmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseBody(t *testing.T, src string) []*Element {
	t.Helper()
	tokens := mustTokenize(t, src, false)
	return Parse(tokens)
}

func TestParseParagraphSingleNewline(t *testing.T) {
	elements := parseBody(t, "a\nb")
	want := []*Element{
		{Type: "p", Content: []any{"a", " ", "b"}},
	}
	if diff := cmp.Diff(want, elements); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParagraphBlankLine(t *testing.T) {
	elements := parseBody(t, "a\n\nb")
	want := []*Element{
		{Type: "p", Content: []any{"a"}},
		{Type: "p", Content: []any{"b"}},
	}
	if diff := cmp.Diff(want, elements); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseManyBlankLinesCollapse(t *testing.T) {
	elements := parseBody(t, "a\n\n\n\nb")
	require.Len(t, elements, 2)
	assert.Equal(t, []any{"a"}, elements[0].Content)
	assert.Equal(t, []any{"b"}, elements[1].Content)
}

func TestParseWhitespaceOnlyParagraphDropped(t *testing.T) {
	elements := parseBody(t, "   \n\n  \t ")
	assert.Empty(t, elements)
}

func TestParseHeadings(t *testing.T) {
	elements := parseBody(t, "# One\n## Two")
	require.Len(t, elements, 2)
	assert.Equal(t, "h1", elements[0].Type)
	assert.Equal(t, []any{"One"}, elements[0].Content)
	assert.Equal(t, "h2", elements[1].Type)
}

func TestParseDecorationConsumedOnce(t *testing.T) {
	elements := parseBody(t, "{#x}\n# A\n# B")
	require.Len(t, elements, 2)
	assert.Equal(t, "x", elements[0].ElementID)
	assert.Empty(t, elements[1].ElementID)
}

func TestParseStyleMarkerAppliesToNextElement(t *testing.T) {
	elements := parseBody(t, `{class="text-xl"}`+"\n# Styled\n\nplain")
	require.Len(t, elements, 2)
	assert.Equal(t, "text-xl", elements[0].Class)
	assert.Empty(t, elements[1].Class)
}

func TestParseDecorationOnParagraph(t *testing.T) {
	elements := parseBody(t, "{#intro}hello world")
	require.Len(t, elements, 1)
	assert.Equal(t, "p", elements[0].Type)
	assert.Equal(t, "intro", elements[0].ElementID)
}

func TestParseDecorationOnContainer(t *testing.T) {
	elements := parseBody(t, "{#box}\n[div]x[/div]")
	require.Len(t, elements, 1)
	assert.Equal(t, "div", elements[0].Type)
	assert.Equal(t, "box", elements[0].ElementID)
}

func TestParseInlineEmphasisAndVariables(t *testing.T) {
	elements := parseBody(t, "Hi **there** {user.name}")
	require.Len(t, elements, 1)
	p := elements[0]
	require.Equal(t, "p", p.Type)
	require.Len(t, p.Content, 4)
	assert.Equal(t, "Hi ", p.Content[0])
	strong := p.Content[1].(*Element)
	assert.Equal(t, "strong", strong.Type)
	assert.Equal(t, []any{"there"}, strong.Content)
	assert.Equal(t, " ", p.Content[2])
	variable := p.Content[3].(*Element)
	assert.Equal(t, "variable", variable.Type)
	assert.Equal(t, "user.name", variable.Name)
}

func TestParseFormScenario(t *testing.T) {
	elements := parseBody(t, "# Hello There\n\n[form @post_hello]\n  [button \"Say Hello\"]")
	require.Len(t, elements, 2)

	assert.Equal(t, "h1", elements[0].Type)
	assert.Equal(t, []any{"Hello There"}, elements[0].Content)

	form := elements[1]
	assert.Equal(t, "form", form.Type)
	assert.Equal(t, "@post_hello", form.Event)
	require.Len(t, form.Elements, 1)

	button := form.Elements[0]
	assert.Equal(t, "button", button.Type)
	assert.Equal(t, []any{"Say Hello"}, button.Content)
}

func TestParseLoopScenario(t *testing.T) {
	elements := parseBody(t, "[each $my_feed as $note]\n  {$note.content}\n[/each]")
	require.Len(t, elements, 1)

	loop := elements[0]
	assert.Equal(t, "loop", loop.Type)
	assert.Equal(t, "$my_feed", loop.Source)
	assert.Equal(t, "$note", loop.Variable)
	require.Len(t, loop.Elements, 1)

	p := loop.Elements[0]
	require.Len(t, p.Content, 1)
	variable := p.Content[0].(*Element)
	assert.Equal(t, "variable", variable.Type)
	assert.Equal(t, "$note.content", variable.Name)
}

func TestParseNestedContainers(t *testing.T) {
	elements := parseBody(t, "[div class=\"outer\"]\n[span]inner[/span]\n[/div]")
	require.Len(t, elements, 1)
	div := elements[0]
	assert.Equal(t, "div", div.Type)
	assert.Equal(t, map[string]string{"class": "outer"}, div.Attributes)
	require.Len(t, div.Elements, 1)
	span := div.Elements[0]
	assert.Equal(t, "span", span.Type)
	require.Len(t, span.Elements, 1)
	assert.Equal(t, []any{"inner"}, span.Elements[0].Content)
}

func TestParseIfContainer(t *testing.T) {
	elements := parseBody(t, "[if $note.content]\nyes\n[/if]")
	require.Len(t, elements, 1)
	cond := elements[0]
	assert.Equal(t, "if", cond.Type)
	assert.Equal(t, "$note.content", cond.Condition)
	require.Len(t, cond.Elements, 1)
	assert.Equal(t, []any{"yes"}, cond.Elements[0].Content)
}

func TestParseIfSkipsMismatchedEndTag(t *testing.T) {
	elements := parseBody(t, "[if $x]a[/foo]b[/if]\n\nafter")
	require.Len(t, elements, 2)
	cond := elements[0]
	assert.Equal(t, "if", cond.Type)
	require.Len(t, cond.Elements, 1)
	assert.Equal(t, []any{"a", "b"}, cond.Elements[0].Content)
	assert.Equal(t, "p", elements[1].Type)
}

func TestParseLeafElements(t *testing.T) {
	elements := parseBody(t, "[input name=\"msg\"]\n\n[json $my_feed]\n\n![cat](cat.png)")
	require.Len(t, elements, 3)

	assert.Equal(t, "input", elements[0].Type)
	assert.Equal(t, "msg", elements[0].Attributes["name"])

	assert.Equal(t, "json", elements[1].Type)
	assert.Equal(t, "$my_feed", elements[1].Variable)

	assert.Equal(t, "img", elements[2].Type)
	assert.Equal(t, "cat.png", elements[2].Attributes["src"])
}

func TestParseComponentReference(t *testing.T) {
	elements := parseBody(t, "before\n\n[#profile npub1abc]")
	require.Len(t, elements, 2)
	comp := elements[1]
	assert.Equal(t, "component", comp.Type)
	assert.Equal(t, "profile", comp.Alias)
	assert.Equal(t, "npub1abc", comp.Argument)
}

func TestParseBlockFlushesParagraph(t *testing.T) {
	elements := parseBody(t, "intro text\n[div]x[/div]")
	require.Len(t, elements, 2)
	assert.Equal(t, "p", elements[0].Type)
	assert.Equal(t, "div", elements[1].Type)
}

func TestParseLenientClosesOpenContainers(t *testing.T) {
	elements := parseBody(t, "[div]\n[span]\ndeep text")
	require.Len(t, elements, 1)
	div := elements[0]
	require.Len(t, div.Elements, 1)
	span := div.Elements[0]
	require.Len(t, span.Elements, 1)
	assert.Equal(t, []any{"deep text"}, span.Elements[0].Content)
}

func TestParseStrayEndTagIgnored(t *testing.T) {
	elements := parseBody(t, "text\n[/div]\nmore")
	require.Len(t, elements, 1)
	assert.Equal(t, "p", elements[0].Type)
}
