package hnmd

import (
	"regexp"
	"strings"
)

// selfClosingNames are leaf tags that never take an explicit close and
// are therefore never pushed on the tag stack.
var selfClosingNames = map[string]bool{
	"img":   true,
	"br":    true,
	"hr":    true,
	"input": true,
	"meta":  true,
	"link":  true,
}

var (
	elementNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	attrNameRe    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)
	identifierRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	loopVarRe     = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)
)

// openTag is one entry on the tag stack: an open block tag waiting for
// its close, remembered with the position it was opened at so that
// diagnostics can point back to it.
type openTag struct {
	typ    TokenType
	name   string
	line   int
	column int
}

// validationState tracks tag balance during one tokenize pass. It is
// consulted only in strict mode and lives no longer than the pass.
type validationState struct {
	stack []openTag
}

func (v *validationState) pushTag(typ TokenType, name string, line, col int) {
	if selfClosingNames[name] {
		return
	}
	v.stack = append(v.stack, openTag{typ: typ, name: name, line: line, column: col})
}

func (v *validationState) popTag(name string, line, col int) *ParseError {
	if len(v.stack) == 0 {
		return parseErrorf(ErrUnmatchedClosingTag, line, col,
			"closing tag [/%s] has no matching opening tag", name)
	}
	top := v.stack[len(v.stack)-1]
	if top.name != name {
		return parseErrorf(ErrMismatchedTag, line, col,
			"closing tag [/%s] does not match open tag [%s] opened at line %d, column %d",
			name, top.name, top.line, top.column)
	}
	v.stack = v.stack[:len(v.stack)-1]
	return nil
}

// checkUnclosedTags reports the oldest still-open tag at end of input.
func (v *validationState) checkUnclosedTags() *ParseError {
	if len(v.stack) == 0 {
		return nil
	}
	first := v.stack[0]
	return parseErrorf(ErrUnclosedTag, first.line, first.column,
		"unclosed tag [%s] opened at line %d, column %d", first.name, first.line, first.column)
}

// The checks below are pure syntax rules, independent of the stack.

func checkElementName(name string, line, col int) *ParseError {
	if name == "" {
		return parseErrorf(ErrEmptyElementName, line, col, "element name is empty")
	}
	if strings.ContainsAny(name, "\n\r") || !elementNameRe.MatchString(name) {
		return parseErrorf(ErrInvalidElementName, line, col, "invalid element name %q", name)
	}
	return nil
}

func checkAttributeName(name string, line, col int) *ParseError {
	if !attrNameRe.MatchString(name) {
		return parseErrorf(ErrInvalidAttrName, line, col, "invalid attribute name %q", name)
	}
	return nil
}

func checkCondition(cond string, line, col int) *ParseError {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return parseErrorf(ErrEmptyCondition, line, col, "if condition is empty")
	}
	if cond == "{}" || cond == "{ }" {
		return parseErrorf(ErrInvalidCondition, line, col, "if condition %q has no content", cond)
	}
	return nil
}

func checkLoopSource(source string, line, col int) *ParseError {
	if !strings.HasPrefix(source, "$") {
		return parseErrorf(ErrInvalidLoopSource, line, col,
			"loop source %q must start with $", source)
	}
	return nil
}

func checkLoopVariable(variable string, line, col int) *ParseError {
	if variable == "" {
		return parseErrorf(ErrMissingLoopVariable, line, col, "loop is missing its variable name")
	}
	name := strings.TrimPrefix(variable, "$")
	if name == "" || !loopVarRe.MatchString(name) {
		return parseErrorf(ErrInvalidLoopVariable, line, col, "invalid loop variable %q", variable)
	}
	return nil
}

func checkFormEvent(event string, line, col int) *ParseError {
	if event == "" {
		return parseErrorf(ErrMissingFormEvent, line, col, "form is missing its @event")
	}
	if !strings.HasPrefix(event, "@") {
		return parseErrorf(ErrInvalidFormEvent, line, col,
			"form event %q must start with @", event)
	}
	if !identifierRe.MatchString(event[1:]) {
		return parseErrorf(ErrInvalidFormEvent, line, col, "invalid form event %q", event)
	}
	return nil
}

func checkEventName(name string, line, col int) *ParseError {
	if !strings.HasPrefix(name, "@") || !identifierRe.MatchString(strings.TrimPrefix(name, "@")) {
		return parseErrorf(ErrInvalidEventName, line, col, "invalid event name %q", name)
	}
	return nil
}

// checkVariableRef validates the content between the braces of a
// variable reference: non-empty, and any nested braces balanced.
func checkVariableRef(content string, line, col int) *ParseError {
	if s := strings.TrimSpace(content); s == "" || s == "$" {
		return parseErrorf(ErrEmptyVariable, line, col, "variable reference is empty")
	}
	depth := 0
	for _, r := range content {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth < 0 {
			return parseErrorf(ErrUnbalancedBraces, line, col,
				"unbalanced braces in variable reference %q", content)
		}
	}
	if depth != 0 {
		return parseErrorf(ErrUnbalancedBraces, line, col,
			"unbalanced braces in variable reference %q", content)
	}
	return nil
}

// checkQuotesClosed detects an odd number of unescaped double quotes
// in a content run.
func checkQuotesClosed(s string, line, col int) *ParseError {
	open := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			open = !open
		}
	}
	if open {
		return parseErrorf(ErrUnclosedQuote, line, col, "unclosed double quote")
	}
	return nil
}
