package hnmd

import "fmt"

// An ErrorCode classifies a structural error found during tokenization
// or frontmatter processing.
type ErrorCode string

const (
	ErrUnmatchedClosingTag ErrorCode = "UNMATCHED_CLOSING_TAG"
	ErrMismatchedTag       ErrorCode = "MISMATCHED_TAG"
	ErrUnclosedTag         ErrorCode = "UNCLOSED_TAG"
	ErrEmptyElementName    ErrorCode = "EMPTY_ELEMENT_NAME"
	ErrInvalidElementName  ErrorCode = "INVALID_ELEMENT_NAME"
	ErrInvalidAttrName     ErrorCode = "INVALID_ATTRIBUTE_NAME"
	ErrUnquotedAttribute   ErrorCode = "UNQUOTED_ATTRIBUTE"
	ErrEmptyCondition      ErrorCode = "EMPTY_CONDITION"
	ErrInvalidCondition    ErrorCode = "INVALID_CONDITION"
	ErrInvalidLoopSource   ErrorCode = "INVALID_LOOP_SOURCE"
	ErrMissingLoopVariable ErrorCode = "MISSING_LOOP_VARIABLE"
	ErrInvalidLoopVariable ErrorCode = "INVALID_LOOP_VARIABLE"
	ErrMissingFormEvent    ErrorCode = "MISSING_FORM_EVENT"
	ErrInvalidFormEvent    ErrorCode = "INVALID_FORM_EVENT"
	ErrInvalidEventName    ErrorCode = "INVALID_EVENT_NAME"
	ErrEmptyVariable       ErrorCode = "EMPTY_VARIABLE"
	ErrUnbalancedBraces    ErrorCode = "UNBALANCED_BRACES"
	ErrUnclosedQuote       ErrorCode = "UNCLOSED_QUOTE"
	ErrUnclosedElement     ErrorCode = "UNCLOSED_ELEMENT"
)

// A ParseError is the single typed error value a strict compile
// produces. Line and Column are 1-based positions into the document
// body.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Code    ErrorCode
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s (%s)", e.Line, e.Column, e.Message, e.Code)
}

func parseErrorf(code ErrorCode, line, col int, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
		Code:    code,
	}
}
