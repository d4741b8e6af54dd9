package hnmd

// An Element is one node of the compiled document tree. The variant is
// tagged by Type: text blocks ("h1".."h6", "p", "strong", "em"),
// containers ("div", "span", "button", "form", "loop", "if") holding
// Elements, leaves ("img", "input", "json" and any generic tag),
// inline variable references ("variable") and component references
// ("component").
//
// Content holds inline items in document order; each item is either a
// string or a *Element (variable reference or emphasis span).
type Element struct {
	Type       string            `json:"type"`
	ElementID  string            `json:"elementId,omitempty"`
	Class      string            `json:"class,omitempty"`
	Content    []any             `json:"content,omitempty"`
	Elements   []*Element        `json:"elements,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Event      string            `json:"event,omitempty"`
	Source     string            `json:"source,omitempty"`
	Variable   string            `json:"variable,omitempty"`
	Condition  string            `json:"condition,omitempty"`
	Alias      string            `json:"alias,omitempty"`
	Argument   string            `json:"argument,omitempty"`
	Name       string            `json:"name,omitempty"`
}
