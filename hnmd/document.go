// Package hnmd compiles Hypernote Markdown — a bracket-tagged markup
// language for decentralized, data-bound UI documents — into a typed
// document tree. The tree is consumed by an external renderer and
// double-checked by an external schema validator; this package only
// does the language work: frontmatter extraction, tokenization with
// structural validation, container parsing and pipeline-shorthand
// compilation.
package hnmd

import (
	"log/slog"
)

// Version is the document format version stamped on compiled output.
const Version = "1.1.0"

// A Document is the compiled, immutable output of one Compile call.
type Document struct {
	Version     string         `json:"version"`
	Elements    []*Element     `json:"elements"`
	Events      map[string]any `json:"events,omitempty"`
	Queries     map[string]any `json:"queries,omitempty"`
	Style       any            `json:"style,omitempty"`
	Imports     any            `json:"imports,omitempty"`
	Kind        string         `json:"kind,omitempty"`
	Name        string         `json:"name,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
}

type config struct {
	strict         bool
	styleConverter StyleConverter
	logger         *slog.Logger
}

// An Option configures a Compile call.
type Option func(*config)

// WithStrict selects strict mode: structural validation runs during
// tokenization and the first violation aborts the compile with a
// *ParseError. The default is lenient, which never raises on
// malformed structure so editors can compile partially-typed input.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithStyleConverter installs the external class-to-style-object
// conversion applied to the frontmatter "style" value.
func WithStyleConverter(conv StyleConverter) Option {
	return func(c *config) { c.styleConverter = conv }
}

// WithLogger sets the logger used for soft failures (unknown pipe
// operations, lossy legacy translations).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Compile turns Hypernote Markdown text into a Document. One call
// consumes one input string and returns one document or one typed
// error; no state is shared across calls, so independent documents may
// be compiled concurrently.
func Compile(src string, opts ...Option) (*Document, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	pipes := pipeCompiler{logger: cfg.logger}

	fm, body, err := extractFrontmatter(src, cfg.strict, cfg.styleConverter, pipes)
	if err != nil {
		return nil, err
	}

	tokens, err := Tokenize(body, cfg.strict)
	if err != nil {
		return nil, err
	}

	return &Document{
		Version:     Version,
		Elements:    Parse(tokens),
		Events:      fm.events,
		Queries:     fm.queries,
		Style:       fm.style,
		Imports:     fm.imports,
		Kind:        fm.kind,
		Name:        fm.name,
		Title:       fm.title,
		Description: fm.description,
	}, nil
}
