package hnmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
)

// A Diagnostic is a non-fatal finding from CheckDocument. Diagnostics
// never block compilation; they exist for editor integrations that
// want feedback beyond structural validation.
type Diagnostic struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

var variablePathRe = regexp.MustCompile(`^[$@a-zA-Z_][a-zA-Z0-9_$.]*$`)

// CheckDocument walks a compiled document and reports expression-level
// problems: if-conditions that do not parse as expressions and
// variable references with malformed paths.
func CheckDocument(doc *Document) []Diagnostic {
	var diags []Diagnostic
	checkElements(doc.Elements, "elements", &diags)
	return diags
}

func checkElements(elements []*Element, path string, diags *[]Diagnostic) {
	for i, el := range elements {
		p := fmt.Sprintf("%s[%d]", path, i)
		checkElement(el, p, diags)
	}
}

func checkElement(el *Element, path string, diags *[]Diagnostic) {
	switch el.Type {
	case "if":
		if err := checkConditionExpr(el.Condition); err != nil {
			*diags = append(*diags, Diagnostic{
				Path:    path,
				Message: fmt.Sprintf("condition %q: %v", el.Condition, err),
			})
		}
	case "variable":
		if !variablePathRe.MatchString(el.Name) {
			*diags = append(*diags, Diagnostic{
				Path:    path,
				Message: fmt.Sprintf("malformed variable path %q", el.Name),
			})
		}
	case "loop":
		if !strings.HasPrefix(el.Source, "$") {
			*diags = append(*diags, Diagnostic{
				Path:    path,
				Message: fmt.Sprintf("loop source %q does not name a query", el.Source),
			})
		}
	}

	for _, item := range el.Content {
		if child, ok := item.(*Element); ok {
			checkElement(child, path, diags)
		}
	}
	checkElements(el.Elements, path+".elements", diags)
}

// checkConditionExpr parses a condition with the expression engine.
// Query/variable sigils are not expression syntax, so they are mapped
// to plain identifiers before parsing; only the expression shape is
// checked here, never its value.
func checkConditionExpr(cond string) error {
	sanitized := strings.NewReplacer("$", "v_", "@", "e_").Replace(cond)
	_, err := expr.Compile(sanitized, expr.AllowUndefinedVariables())
	return err
}
