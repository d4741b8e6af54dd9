package hnmd

import (
	"fmt"
	"strings"
)

// A parser consumes the token stream and builds the element tree. The
// cursor index is shared between the top-level loop and the recursive
// container routine; paragraph buffering and the pending-decoration
// slots are parser-local state, reset per Parse call.
type parser struct {
	tokens []Token
	pos    int

	// Pending decoration set by ID_MARKER/STYLE_MARKER tokens and
	// consumed by the next emitted element, whatever its kind.
	pendingID    string
	pendingClass string
}

// Parse builds the element tree from a token stream. It trusts the
// stream's well-formedness in strict mode (the tokenizer's validation
// already rejected unbalanced input) and silently closes any still-open
// containers at EOF in lenient mode.
func Parse(tokens []Token) []*Element {
	p := &parser{tokens: tokens}
	return p.parseUntil(0, "", false)
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) decorate(el *Element) *Element {
	if p.pendingID != "" {
		el.ElementID = p.pendingID
		p.pendingID = ""
	}
	if p.pendingClass != "" {
		el.Class = p.pendingClass
		p.pendingClass = ""
	}
	return el
}

// parseUntil consumes tokens until the given end token type (when
// bounded) or EOF, returning the elements produced. The end token
// itself is consumed. A non-empty endValue further requires the end
// token's Value to match, so generic end tags close only their own
// container.
func (p *parser) parseUntil(end TokenType, endValue string, bounded bool) []*Element {
	var elements []*Element
	var para []any

	flush := func() {
		if el := buildParagraph(para); el != nil {
			elements = append(elements, p.decorate(el))
		}
		para = nil
	}

	for {
		tok := p.current()

		if tok.Type == TokenEOF {
			// In lenient mode a bounded container may run out of
			// tokens; close it silently.
			flush()
			return elements
		}
		if bounded && tok.Type == end && (endValue == "" || tok.Value == endValue) {
			p.pos++
			flush()
			return elements
		}

		switch tok.Type {
		case TokenText:
			para = append(para, tok.Value)
			p.pos++

		case TokenVariableRef:
			para = append(para, &Element{Type: "variable", Name: tok.Value})
			p.pos++

		case TokenBold:
			para = append(para, &Element{Type: "strong", Content: []any{tok.Value}})
			p.pos++

		case TokenItalic:
			para = append(para, &Element{Type: "em", Content: []any{tok.Value}})
			p.pos++

		case TokenNewline:
			p.pos++
			if p.current().Type == TokenNewline {
				// Blank line: end of paragraph. Collapse any further
				// consecutive newlines into the same break.
				for p.current().Type == TokenNewline {
					p.pos++
				}
				flush()
				break
			}
			// A single line break joins lines with one space.
			if len(para) > 0 && !endsInSpace(para) {
				para = append(para, " ")
			}

		case TokenHeading:
			flush()
			el := &Element{Type: fmt.Sprintf("h%d", tok.Level)}
			if tok.Value != "" {
				el.Content = []any{tok.Value}
			}
			elements = append(elements, p.decorate(el))
			p.pos++

		case TokenImage:
			flush()
			elements = append(elements, p.decorate(&Element{
				Type:       "img",
				Attributes: tok.Attributes,
			}))
			p.pos++

		case TokenComponent:
			flush()
			elements = append(elements, p.decorate(&Element{
				Type:     "component",
				Alias:    tok.Value,
				Argument: tok.attr("argument"),
			}))
			p.pos++

		case TokenIDMarker:
			p.pendingID = tok.Value
			p.pos++

		case TokenStyleMarker:
			p.pendingClass = tok.Value
			p.pos++

		case TokenFormStart:
			flush()
			elements = append(elements, p.parseContainer(tok, TokenFormEnd, "form"))

		case TokenDivStart:
			flush()
			elements = append(elements, p.parseContainer(tok, TokenDivEnd, "div"))

		case TokenButtonStart:
			flush()
			elements = append(elements, p.parseContainer(tok, TokenButtonEnd, "button"))

		case TokenSpanStart:
			flush()
			elements = append(elements, p.parseContainer(tok, TokenSpanEnd, "span"))

		case TokenEachStart:
			flush()
			elements = append(elements, p.parseContainer(tok, TokenEachEnd, "loop"))

		case TokenElementStart:
			flush()
			elements = append(elements, p.parseElementStart(tok))

		case TokenFormEnd, TokenDivEnd, TokenButtonEnd, TokenSpanEnd, TokenEachEnd, TokenElementEnd:
			// A stray end tag with no matching container; only
			// reachable in lenient mode. Drop it.
			p.pos++
		}
	}
}

// parseContainer builds a container element from its start token,
// recursing for the children. Form promotes its @event, loops promote
// source/variable; neither carries generic attributes.
func (p *parser) parseContainer(start Token, end TokenType, typ string) *Element {
	p.pos++ // consume the start token

	el := &Element{Type: typ}
	switch typ {
	case "form":
		el.Event = start.attr("event")
	case "loop":
		el.Source = start.attr("source")
		el.Variable = start.attr("variable")
	default:
		el.Attributes, el.Content = splitLiteral(start.Attributes)
	}
	p.decorate(el)

	el.Elements = p.parseUntil(end, "", true)
	return el
}

// parseElementStart handles ELEMENT_START tokens: "if" containers,
// "json" debug leaves and generic leaf tags.
func (p *parser) parseElementStart(tok Token) *Element {
	switch tok.Value {
	case "if":
		p.pos++
		el := p.decorate(&Element{Type: "if", Condition: tok.attr("condition")})
		el.Elements = p.parseUntil(TokenElementEnd, "if", true)
		return el

	case "json":
		p.pos++
		return p.decorate(&Element{Type: "json", Variable: tok.attr("variable")})

	default:
		p.pos++
		el := &Element{Type: tok.Value}
		el.Attributes, el.Content = splitLiteral(tok.Attributes)
		return p.decorate(el)
	}
}

// splitLiteral separates the bare quoted literal captured by the
// tokenizer (under the "content" key) from the generic attributes.
// The token's map is copied; tokens stay immutable.
func splitLiteral(attrs map[string]string) (map[string]string, []any) {
	if attrs == nil {
		return nil, nil
	}
	var content []any
	rest := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if k == "content" {
			content = []any{v}
			continue
		}
		rest[k] = v
	}
	if len(rest) == 0 {
		rest = nil
	}
	return rest, content
}

// buildParagraph turns the paragraph buffer into a "p" element, or nil
// when the buffer holds nothing but whitespace. Whitespace-only string
// items at the edges (indentation, the space inserted for a trailing
// line break) are dropped.
func buildParagraph(items []any) *Element {
	for len(items) > 0 {
		if s, ok := items[0].(string); ok && strings.TrimSpace(s) == "" {
			items = items[1:]
			continue
		}
		break
	}
	for len(items) > 0 {
		if s, ok := items[len(items)-1].(string); ok && strings.TrimSpace(s) == "" {
			items = items[:len(items)-1]
			continue
		}
		break
	}
	if len(items) == 0 {
		return nil
	}
	return &Element{Type: "p", Content: items}
}

func endsInSpace(items []any) bool {
	if len(items) == 0 {
		return false
	}
	s, ok := items[len(items)-1].(string)
	return ok && strings.HasSuffix(s, " ")
}
