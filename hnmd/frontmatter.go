package hnmd

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// A StyleConverter turns the frontmatter "style" value (a class
// string, per element type) into a style object. The conversion
// itself lives outside the compiler; when no converter is configured
// the raw value is stored unchanged.
type StyleConverter func(value any) (any, error)

// frontmatter holds the classified header fields of a document.
type frontmatter struct {
	events      map[string]any
	queries     map[string]any
	style       any
	imports     any
	kind        string
	name        string
	title       string
	description string
}

// extractFrontmatter splits the leading YAML block from the document
// text and classifies its keys. The returned body is the remaining
// text, ready for tokenization. A missing frontmatter block is not an
// error: the whole input is body.
func extractFrontmatter(src string, strict bool, conv StyleConverter, pipes pipeCompiler) (*frontmatter, string, error) {
	fm := &frontmatter{}

	block, body, ok := splitFrontmatter(src)
	if !ok {
		return fm, src, nil
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		if strict {
			return nil, "", fmt.Errorf("parse frontmatter: %w", err)
		}
		return fm, body, nil
	}

	for key, value := range raw {
		switch {
		case strings.HasPrefix(key, "@"):
			if strict {
				if err := checkEventName(key, 1, 1); err != nil {
					return nil, "", err
				}
			}
			if fm.events == nil {
				fm.events = map[string]any{}
			}
			fm.events[key] = compileQueryValue(value, pipes)

		case strings.HasPrefix(key, "$"):
			if fm.queries == nil {
				fm.queries = map[string]any{}
			}
			fm.queries[key] = expandQuery(value, false, pipes)

		case strings.HasPrefix(key, "#"):
			// Component-scoped implicit query; same handling as "$"
			// plus a single-result-extraction step for the shorthand.
			if fm.queries == nil {
				fm.queries = map[string]any{}
			}
			fm.queries[key] = expandQuery(value, true, pipes)

		case key == "style":
			if conv != nil {
				converted, err := conv(value)
				if err != nil {
					slog.Default().Warn("style conversion failed, keeping raw value", "err", err)
					fm.style = value
					break
				}
				fm.style = converted
			} else {
				fm.style = value
			}

		case key == "imports":
			fm.imports = value

		case key == "kind", key == "type":
			fm.kind = stringValue(value)
		case key == "title":
			fm.title = stringValue(value)
		case key == "description":
			fm.description = stringValue(value)
		case key == "name":
			fm.name = stringValue(value)

		default:
			// Unrecognized keys are ignored for forward compatibility.
		}
	}

	return fm, body, nil
}

// splitFrontmatter detects a leading "---\n...\n---" block. The second
// return value is the remaining body.
func splitFrontmatter(src string) (block, body string, ok bool) {
	if !strings.HasPrefix(src, frontmatterDelim+"\n") {
		return "", src, false
	}
	rest := src[len(frontmatterDelim)+1:]

	// An empty block: the closing delimiter immediately follows the
	// opening one.
	if rest == frontmatterDelim {
		return "", "", true
	}
	if strings.HasPrefix(rest, frontmatterDelim+"\n") {
		return "", rest[len(frontmatterDelim)+1:], true
	}

	if idx := strings.Index(rest, "\n"+frontmatterDelim+"\n"); idx >= 0 {
		return rest[:idx], rest[idx+len(frontmatterDelim)+2:], true
	}
	if strings.HasSuffix(rest, "\n"+frontmatterDelim) {
		return rest[:len(rest)-len(frontmatterDelim)-1], "", true
	}
	return "", src, false
}

// expandQuery normalizes one query value. A bare address-like string
// is shorthand for "fetch this identified object and use it as the
// query"; component-scoped queries additionally extract the single
// result.
func expandQuery(value any, componentScoped bool, pipes pipeCompiler) any {
	if addr, ok := value.(string); ok {
		q := map[string]any{"id": addr}
		if componentScoped {
			q["pipe"] = []Operation{{"op": "first"}}
		}
		return q
	}
	return compileQueryValue(value, pipes)
}

// compileQueryValue compiles the "pipe" entry of a query or event
// object in place of its raw form; everything else passes through as
// the protocol-filter-like object it is.
func compileQueryValue(value any, pipes pipeCompiler) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if raw, ok := m["pipe"]; ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		out["pipe"] = pipes.compile(raw)
		return out
	}
	return m
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
