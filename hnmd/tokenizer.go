package hnmd

import (
	"strings"
)

// containerTokens maps a container element name to its start/end token
// types. Names absent from this table produce leaf ELEMENT_START
// tokens (or, for "if", an ELEMENT_START/ELEMENT_END container pair).
var containerTokens = map[string][2]TokenType{
	"form":   {TokenFormStart, TokenFormEnd},
	"div":    {TokenDivStart, TokenDivEnd},
	"button": {TokenButtonStart, TokenButtonEnd},
	"span":   {TokenSpanStart, TokenSpanEnd},
	"each":   {TokenEachStart, TokenEachEnd},
}

// variablePrefixes trigger variable-reference lexing after "{" when the
// braced content does not start with "$".
var variablePrefixes = []string{"user.", "time.", "target.", "form."}

// A tokenizer is a single forward cursor over the document body. It is
// created per Tokenize call and never reused.
type tokenizer struct {
	src    string
	pos    int
	strict bool
	lines  lineIndex
	vs     validationState
	tokens []Token
}

// Tokenize scans the document body into a flat token stream, always
// terminated by an EOF token. In strict mode the first structural
// violation aborts the scan with a *ParseError; in lenient mode the
// scan never fails and produces a best-effort stream.
func Tokenize(src string, strict bool) ([]Token, error) {
	t := &tokenizer{src: src, strict: strict, lines: newLineIndex(src)}
	if err := t.run(); err != nil {
		return nil, err
	}
	return t.tokens, nil
}

func (t *tokenizer) run() error {
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == '\n':
			t.emit(Token{Type: TokenNewline})
			t.pos++
		case c == '#' && t.atLineStart():
			if !t.scanHeading() {
				t.scanText()
			}
		case c == '{':
			if err := t.scanBrace(); err != nil {
				return err
			}
		case c == '!' && t.peek(1) == '[':
			if !t.scanImage() {
				t.scanText()
			}
		case c == '[':
			if err := t.scanBracketTag(); err != nil {
				return err
			}
		case c == '*':
			t.scanEmphasis()
		default:
			t.scanText()
		}
	}
	if t.strict {
		if err := t.vs.checkUnclosedTags(); err != nil {
			return err
		}
	}
	t.emit(Token{Type: TokenEOF})
	return nil
}

func (t *tokenizer) emit(tok Token) {
	t.tokens = append(t.tokens, tok)
}

func (t *tokenizer) peek(n int) byte {
	if t.pos+n >= len(t.src) {
		return 0
	}
	return t.src[t.pos+n]
}

func (t *tokenizer) atLineStart() bool {
	return t.pos == 0 || t.src[t.pos-1] == '\n'
}

func (t *tokenizer) at() (line, col int) {
	return t.lines.position(t.pos)
}

// scanHeading lexes "#"×1..6 + space + text-to-EOL. Returns false when
// the cursor does not actually sit on a heading (e.g. "#nospace"), in
// which case the cursor is unchanged.
func (t *tokenizer) scanHeading() bool {
	level := 0
	for t.pos+level < len(t.src) && t.src[t.pos+level] == '#' {
		level++
	}
	if level > 6 || t.pos+level >= len(t.src) || t.src[t.pos+level] != ' ' {
		return false
	}
	start := t.pos + level + 1
	end := strings.IndexByte(t.src[start:], '\n')
	if end < 0 {
		end = len(t.src) - start
	}
	t.emit(Token{Type: TokenHeading, Value: strings.TrimSpace(t.src[start : start+end]), Level: level})
	t.pos = start + end
	return true
}

// scanBrace disambiguates "{": id marker, style marker, variable
// reference, or the start of a plain-text run, in that order.
func (t *tokenizer) scanBrace() error {
	rest := t.src[t.pos+1:]

	switch {
	case strings.HasPrefix(rest, "#"):
		if close := strings.IndexByte(rest, '}'); close >= 0 && !strings.ContainsAny(rest[:close], "\n") {
			name := rest[1:close]
			if identifierRe.MatchString(name) {
				t.emit(Token{Type: TokenIDMarker, Value: name, ElementID: name})
				t.pos += close + 2
				return nil
			}
		}
		t.scanText()
		return nil

	case strings.HasPrefix(rest, `class="`):
		inner := rest[len(`class="`):]
		if close := strings.Index(inner, `"}`); close >= 0 && !strings.ContainsAny(inner[:close], "\n") {
			t.emit(Token{Type: TokenStyleMarker, Value: inner[:close]})
			t.pos += len(`{class="`) + close + 2
			return nil
		}
		t.scanText()
		return nil

	case strings.HasPrefix(rest, "$") || hasAnyPrefix(rest, variablePrefixes):
		return t.scanVariableRef()

	default:
		t.scanText()
		return nil
	}
}

// scanVariableRef lexes "{...}" with brace-depth tracking so nested
// braces inside the reference do not terminate it early.
func (t *tokenizer) scanVariableRef() error {
	line, col := t.at()
	depth := 0
	for i := t.pos; i < len(t.src); i++ {
		switch t.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				content := t.src[t.pos+1 : i]
				if t.strict {
					if err := checkVariableRef(content, line, col); err != nil {
						return err
					}
				}
				t.emit(Token{Type: TokenVariableRef, Value: strings.TrimSpace(content)})
				t.pos = i + 1
				return nil
			}
		}
	}
	// No closing brace before EOF.
	if t.strict {
		return parseErrorf(ErrUnbalancedBraces, line, col,
			"variable reference is missing its closing brace")
	}
	t.emit(Token{Type: TokenVariableRef, Value: strings.TrimSpace(t.src[t.pos+1:])})
	t.pos = len(t.src)
	return nil
}

// scanImage lexes "![alt](src)". Returns false and leaves the cursor
// unchanged when the construct is malformed.
func (t *tokenizer) scanImage() bool {
	rest := t.src[t.pos+2:]
	altEnd := strings.IndexByte(rest, ']')
	if altEnd < 0 || strings.ContainsAny(rest[:altEnd], "\n") {
		return false
	}
	if altEnd+1 >= len(rest) || rest[altEnd+1] != '(' {
		return false
	}
	srcPart := rest[altEnd+2:]
	srcEnd := strings.IndexByte(srcPart, ')')
	if srcEnd < 0 || strings.ContainsAny(srcPart[:srcEnd], "\n") {
		return false
	}
	t.emit(Token{Type: TokenImage, Attributes: map[string]string{
		"alt": rest[:altEnd],
		"src": srcPart[:srcEnd],
	}})
	t.pos += 2 + altEnd + 2 + srcEnd + 1
	return true
}

// scanBracketTag lexes "[...]": a closing tag, a component reference,
// or an opening tag with a per-name attribute grammar.
func (t *tokenizer) scanBracketTag() error {
	line, col := t.at()

	content, closed := t.bracketContent()
	if !closed && t.strict {
		return parseErrorf(ErrUnclosedElement, line, col, "missing closing bracket")
	}

	switch {
	case strings.HasPrefix(content, "/"):
		return t.lexClosingTag(strings.TrimSpace(content[1:]), line, col)
	case strings.HasPrefix(content, "#"):
		return t.lexComponent(content[1:], line, col)
	default:
		return t.lexOpeningTag(content, line, col)
	}
}

// bracketContent returns the raw text between the "[" at the cursor
// and the next "]". The cursor is advanced past the tag (or to EOF
// when the bracket never closes). Quote handling happens later, on the
// attribute grammar; a "]" inside a quoted value therefore ends the
// tag early, which the strict quote check then reports.
func (t *tokenizer) bracketContent() (content string, closed bool) {
	start := t.pos + 1
	if end := strings.IndexByte(t.src[start:], ']'); end >= 0 {
		t.pos = start + end + 1
		return t.src[start : start+end], true
	}
	t.pos = len(t.src)
	return t.src[start:], false
}

func (t *tokenizer) lexClosingTag(name string, line, col int) error {
	if t.strict {
		if err := checkElementName(name, line, col); err != nil {
			return err
		}
		if err := t.vs.popTag(name, line, col); err != nil {
			return err
		}
	}
	if tt, ok := containerTokens[name]; ok {
		t.emit(Token{Type: tt[1], Value: name})
	} else {
		t.emit(Token{Type: TokenElementEnd, Value: name})
	}
	return nil
}

func (t *tokenizer) lexComponent(content string, line, col int) error {
	alias, argument := splitFirstSpace(content)
	if t.strict {
		if err := checkElementName(alias, line, col); err != nil {
			return err
		}
	}
	t.emit(Token{Type: TokenComponent, Value: alias,
		Attributes: map[string]string{"argument": strings.TrimSpace(argument)}})
	return nil
}

func (t *tokenizer) lexOpeningTag(content string, line, col int) error {
	name, rest := splitFirstSpace(content)
	rest = strings.TrimSpace(rest)

	if t.strict {
		if err := checkElementName(name, line, col); err != nil {
			return err
		}
		if err := checkQuotesClosed(rest, line, col); err != nil {
			return err
		}
	}

	switch name {
	case "form":
		if t.strict {
			if err := checkFormEvent(rest, line, col); err != nil {
				return err
			}
		}
		t.vs.pushTag(TokenFormStart, name, line, col)
		t.emit(Token{Type: TokenFormStart, Value: name,
			Attributes: map[string]string{"event": rest}})
		return nil

	case "div", "button", "span":
		attrs, err := t.lexAttributes(rest, line, col)
		if err != nil {
			return err
		}
		tt := containerTokens[name]
		t.vs.pushTag(tt[0], name, line, col)
		t.emit(Token{Type: tt[0], Value: name, Attributes: attrs})
		return nil

	case "each":
		source, variable, err := t.lexLoopHeader(rest, line, col)
		if err != nil {
			return err
		}
		t.vs.pushTag(TokenEachStart, name, line, col)
		t.emit(Token{Type: TokenEachStart, Value: name,
			Attributes: map[string]string{"source": source, "variable": variable}})
		return nil

	case "if":
		if t.strict {
			if err := checkCondition(rest, line, col); err != nil {
				return err
			}
		}
		t.vs.pushTag(TokenElementStart, name, line, col)
		t.emit(Token{Type: TokenElementStart, Value: name,
			Attributes: map[string]string{"condition": rest}})
		return nil

	case "json":
		t.emit(Token{Type: TokenElementStart, Value: name,
			Attributes: map[string]string{"variable": rest}})
		return nil

	default:
		// Generic leaf: [input type="text"], [br], [hr "rule"] etc.
		// Self-closing names and unknown names alike take no end tag.
		attrs, err := t.lexAttributes(rest, line, col)
		if err != nil {
			return err
		}
		t.emit(Token{Type: TokenElementStart, Value: name, Attributes: attrs})
		return nil
	}
}

// lexAttributes parses zero or more name="value" pairs plus at most one
// bare quoted literal, which is stored under the "content" key.
func (t *tokenizer) lexAttributes(s string, line, col int) (map[string]string, error) {
	var attrs map[string]string
	set := func(k, v string) {
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[k] = v
	}

	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}

		if s[i] == '"' {
			// Bare quoted literal.
			end := findQuoteEnd(s, i+1)
			if end < 0 {
				if t.strict {
					return nil, parseErrorf(ErrUnclosedQuote, line, col, "unclosed double quote")
				}
				set("content", s[i+1:])
				return attrs, nil
			}
			set("content", s[i+1:end])
			i = end + 1
			continue
		}

		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			// A trailing bare word carries no value; tolerate it.
			break
		}
		name := strings.TrimSpace(s[i : i+eq])
		if t.strict {
			if err := checkAttributeName(name, line, col); err != nil {
				return nil, err
			}
		}
		j := i + eq + 1
		if j >= len(s) || s[j] != '"' {
			if t.strict {
				return nil, parseErrorf(ErrUnquotedAttribute, line, col,
					"attribute %q value must be quoted", name)
			}
			// Lenient: take the unquoted word.
			end := j
			for end < len(s) && s[end] != ' ' {
				end++
			}
			set(name, s[j:end])
			i = end
			continue
		}
		end := findQuoteEnd(s, j+1)
		if end < 0 {
			if t.strict {
				return nil, parseErrorf(ErrUnclosedQuote, line, col,
					"unclosed quote in attribute %q", name)
			}
			set(name, s[j+1:])
			return attrs, nil
		}
		set(name, s[j+1:end])
		i = end + 1
	}
	return attrs, nil
}

// lexLoopHeader parses "$source as $variable".
func (t *tokenizer) lexLoopHeader(s string, line, col int) (source, variable string, err error) {
	source, rest := splitFirstSpace(s)
	rest = strings.TrimSpace(rest)

	if t.strict {
		if e := checkLoopSource(source, line, col); e != nil {
			return "", "", e
		}
	}

	if as, remainder, found := strings.Cut(rest, " "); found && as == "as" {
		variable = strings.TrimSpace(remainder)
	} else if as == "as" {
		variable = ""
	} else if rest == "" {
		variable = ""
	} else {
		// "as" keyword missing; treat the remainder as the variable in
		// lenient mode so editors still get a loop element.
		variable = rest
	}

	if t.strict {
		if e := checkLoopVariable(variable, line, col); e != nil {
			return "", "", e
		}
	}
	return source, variable, nil
}

// scanEmphasis lexes "**bold**" and "*italic*". A "*" that never finds
// its closer is absorbed into plain text rather than reported.
func (t *tokenizer) scanEmphasis() {
	if t.peek(1) == '*' {
		inner := t.src[t.pos+2:]
		// A zero-length span ("****") is literal text, not empty bold.
		if end := strings.Index(inner, "**"); end > 0 && !strings.ContainsAny(inner[:end], "\n") {
			t.emit(Token{Type: TokenBold, Value: inner[:end]})
			t.pos += end + 4
			return
		}
		// Literal "**" run with no closer.
		t.emitText("**")
		t.pos += 2
		return
	}

	inner := t.src[t.pos+1:]
	end := strings.IndexByte(inner, '*')
	// Italic only when the closer is a lone "*" and the span stays on
	// one line; otherwise the asterisk is literal text.
	if end > 0 && !strings.ContainsAny(inner[:end], "\n") && (end+1 >= len(inner) || inner[end+1] != '*') {
		t.emit(Token{Type: TokenItalic, Value: inner[:end]})
		t.pos += end + 2
		return
	}
	t.emitText("*")
	t.pos++
}

// scanText accumulates a run of plain characters up to the next
// special character. The byte at the cursor is always consumed, so a
// special character that failed its own scan does not loop forever.
func (t *tokenizer) scanText() {
	start := t.pos
	t.pos++
	for t.pos < len(t.src) {
		switch c := t.src[t.pos]; {
		case c == '\n' || c == '{' || c == '[' || c == '*':
			t.emitText(t.src[start:t.pos])
			return
		case c == '!' && t.peek(1) == '[':
			t.emitText(t.src[start:t.pos])
			return
		default:
			t.pos++
		}
	}
	t.emitText(t.src[start:])
}

// emitText appends a TEXT token, merging with a preceding TEXT token
// so that fallback characters do not fragment a run.
func (t *tokenizer) emitText(s string) {
	if s == "" {
		return
	}
	if n := len(t.tokens); n > 0 && t.tokens[n-1].Type == TokenText {
		t.tokens[n-1].Value += s
		return
	}
	t.emit(Token{Type: TokenText, Value: s})
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func splitFirstSpace(s string) (head, tail string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// findQuoteEnd returns the index of the closing double quote at or
// after from, honoring backslash escapes, or -1.
func findQuoteEnd(s string, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
