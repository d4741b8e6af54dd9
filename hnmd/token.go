package hnmd

// A TokenType identifies the kind of a lexed token. The set is closed:
// the parser switches exhaustively over it and treats anything else as
// a bug in the tokenizer.
type TokenType int

const (
	TokenText TokenType = iota
	TokenHeading
	TokenFormStart
	TokenFormEnd
	TokenDivStart
	TokenDivEnd
	TokenButtonStart
	TokenButtonEnd
	TokenSpanStart
	TokenSpanEnd
	TokenElementStart
	TokenElementEnd
	TokenIDMarker
	TokenStyleMarker
	TokenImage
	TokenNewline
	TokenEachStart
	TokenEachEnd
	TokenVariableRef
	TokenBold
	TokenItalic
	TokenComponent
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenText:         "TEXT",
	TokenHeading:      "HEADING",
	TokenFormStart:    "FORM_START",
	TokenFormEnd:      "FORM_END",
	TokenDivStart:     "DIV_START",
	TokenDivEnd:       "DIV_END",
	TokenButtonStart:  "BUTTON_START",
	TokenButtonEnd:    "BUTTON_END",
	TokenSpanStart:    "SPAN_START",
	TokenSpanEnd:      "SPAN_END",
	TokenElementStart: "ELEMENT_START",
	TokenElementEnd:   "ELEMENT_END",
	TokenIDMarker:     "ID_MARKER",
	TokenStyleMarker:  "STYLE_MARKER",
	TokenImage:        "IMAGE",
	TokenNewline:      "NEWLINE",
	TokenEachStart:    "EACH_START",
	TokenEachEnd:      "EACH_END",
	TokenVariableRef:  "VARIABLE_REFERENCE",
	TokenBold:         "BOLD",
	TokenItalic:       "ITALIC",
	TokenComponent:    "COMPONENT",
	TokenEOF:          "EOF",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// A Token is one unit of lexed input. Tokens are immutable once
// produced; the slice returned by Tokenize is read-only input to the
// parser.
//
// Value holds the token's text payload: heading text, text-run
// content, the variable path of a VARIABLE_REFERENCE, the element name
// of an ELEMENT_START, or the alias of a COMPONENT.
type Token struct {
	Type       TokenType
	Value      string
	Level      int               // heading level, 1..6
	Attributes map[string]string // tag attributes, nil for most tokens
	ElementID  string            // id captured by an ID_MARKER
}

// attr returns the named attribute or "".
func (t Token) attr(name string) string {
	if t.Attributes == nil {
		return ""
	}
	return t.Attributes[name]
}
