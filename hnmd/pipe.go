package hnmd

import (
	"log/slog"
)

// An Operation is one normalized pipeline step: {"op": name} plus the
// operation's parameters. The runtime interprets operations; this
// compiler only normalizes their shape.
type Operation = map[string]any

// pipeCompiler normalizes the compact and legacy pipeline syntaxes
// into an explicit operation list. Unknown operation names are a soft
// failure: logged and passed through, never aborting the compile.
type pipeCompiler struct {
	logger *slog.Logger
}

// CompilePipe normalizes a raw pipeline value using the default
// logger. Compiling an already-compiled pipeline is the identity.
func CompilePipe(raw any) []Operation {
	return pipeCompiler{logger: slog.Default()}.compile(raw)
}

func (c pipeCompiler) compile(raw any) []Operation {
	steps := asSlice(raw)
	if steps == nil {
		return nil
	}
	if isLegacyPipe(steps) {
		return c.compileLegacy(steps)
	}

	out := make([]Operation, 0, len(steps))
	for _, step := range steps {
		out = append(out, c.compileStep(step))
	}
	return out
}

func (c pipeCompiler) compileStep(step any) Operation {
	switch s := step.(type) {
	case string:
		return Operation{"op": s}

	case map[string]any:
		if _, ok := s["op"]; ok {
			return s // already compiled
		}
		if len(s) == 1 {
			for name, param := range s {
				return c.compileShorthand(name, param)
			}
		}
		c.logger.Warn("pipe step has no op and is not a shorthand, passing through", "step", s)
		return s

	default:
		c.logger.Warn("unrecognized pipe step shape, passing through", "step", step)
		return Operation{"op": "unknown", "value": step}
	}
}

// compileShorthand expands a single-key {name: param} step using the
// per-operation parameter table.
func (c pipeCompiler) compileShorthand(name string, param any) Operation {
	switch name {
	case "save":
		return Operation{"op": "save", "as": param}
	case "get", "pluck":
		return Operation{"op": name, "field": param}
	case "limit", "take", "drop":
		return Operation{"op": name, "count": param}
	case "sort":
		if by, ok := param.(string); ok {
			return Operation{"op": "sort", "by": by}
		}
		op := Operation{"op": "sort"}
		if m, ok := param.(map[string]any); ok {
			for k, v := range m {
				op[k] = v
			}
		}
		return op
	case "map":
		// The map parameter is itself a pipeline.
		return Operation{"op": "map", "pipe": c.compile(param)}
	default:
		c.logger.Warn("unknown pipe operation, passing through", "op", name)
		return Operation{"op": name, "value": param}
	}
}

// legacyOps maps legacy operation names to their modern equivalents.
var legacyOps = map[string]string{
	"first":   "first",
	"last":    "last",
	"reverse": "reverse",
	"sort":    "sort",
	"limit":   "limit",
	"get":     "get",
	"pluck":   "pluck",
	"json":    "json",
	"save":    "save",
	"filter":  "filter",
}

// isLegacyPipe reports whether the pipeline uses the legacy
// {operation: name, ...} object form, detected from the first element.
func isLegacyPipe(steps []any) bool {
	if len(steps) == 0 {
		return false
	}
	m, ok := steps[0].(map[string]any)
	if !ok {
		return false
	}
	_, has := m["operation"]
	return has
}

// compileLegacy translates the legacy object form. The "extract"
// operation cannot be mechanically translated without the original
// expression semantics; it falls back to {op:"get", field:"content"},
// which is a known lossy conversion and kept on purpose.
func (c pipeCompiler) compileLegacy(steps []any) []Operation {
	out := make([]Operation, 0, len(steps))
	for _, step := range steps {
		m, ok := step.(map[string]any)
		if !ok {
			c.logger.Warn("legacy pipe step is not an object, skipping", "step", step)
			continue
		}
		name, _ := m["operation"].(string)

		if name == "extract" {
			c.logger.Warn("legacy extract operation translated to lossy get content fallback",
				"expression", m["expression"])
			out = append(out, Operation{"op": "get", "field": "content"})
			continue
		}

		modern, known := legacyOps[name]
		if !known {
			c.logger.Warn("unknown legacy pipe operation, passing through", "op", name)
			modern = name
		}
		op := Operation{"op": modern}
		for k, v := range m {
			if k != "operation" {
				op[k] = v
			}
		}
		out = append(out, op)
	}
	return out
}

func asSlice(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []Operation:
		out := make([]any, len(v))
		for i, op := range v {
			out[i] = op
		}
		return out
	default:
		return []any{v}
	}
}
