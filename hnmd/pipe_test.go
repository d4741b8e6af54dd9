package hnmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePipeCompact(t *testing.T) {
	raw := []any{
		"first",
		map[string]any{"get": "content"},
		"json",
		map[string]any{"save": "value"},
	}
	want := []Operation{
		{"op": "first"},
		{"op": "get", "field": "content"},
		{"op": "json"},
		{"op": "save", "as": "value"},
	}
	got := CompilePipe(raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pipe mismatch (-want +got):\n%s", diff)
	}
}

func TestCompilePipeIdempotent(t *testing.T) {
	raws := []any{
		[]any{"first", map[string]any{"get": "content"}, map[string]any{"save": "v"}},
		[]any{map[string]any{"limit": 5}, "reverse"},
		[]any{map[string]any{"sort": map[string]any{"by": "created_at", "dir": "desc"}}},
	}
	for _, raw := range raws {
		once := CompilePipe(raw)
		twice := CompilePipe(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("compile is not idempotent (-once +twice):\n%s", diff)
		}
	}
}

func TestCompilePipeShorthands(t *testing.T) {
	tests := []struct {
		name string
		step any
		want Operation
	}{
		{"save", map[string]any{"save": "x"}, Operation{"op": "save", "as": "x"}},
		{"get", map[string]any{"get": "content"}, Operation{"op": "get", "field": "content"}},
		{"pluck", map[string]any{"pluck": "id"}, Operation{"op": "pluck", "field": "id"}},
		{"limit", map[string]any{"limit": 10}, Operation{"op": "limit", "count": 10}},
		{"take", map[string]any{"take": 3}, Operation{"op": "take", "count": 3}},
		{"drop", map[string]any{"drop": 1}, Operation{"op": "drop", "count": 1}},
		{"sort by string", map[string]any{"sort": "created_at"}, Operation{"op": "sort", "by": "created_at"}},
		{"sort by object", map[string]any{"sort": map[string]any{"by": "ts", "dir": "asc"}},
			Operation{"op": "sort", "by": "ts", "dir": "asc"}},
		{"bare name", "reverse", Operation{"op": "reverse"}},
		{"explicit op passthrough", map[string]any{"op": "custom", "x": 1}, Operation{"op": "custom", "x": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompilePipe([]any{tt.step})
			require.Len(t, got, 1)
			if diff := cmp.Diff(tt.want, got[0]); diff != "" {
				t.Errorf("step mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompilePipeMapRecursion(t *testing.T) {
	raw := []any{
		map[string]any{"map": []any{"first", map[string]any{"get": "content"}}},
	}
	got := CompilePipe(raw)
	require.Len(t, got, 1)
	want := Operation{"op": "map", "pipe": []Operation{
		{"op": "first"},
		{"op": "get", "field": "content"},
	}}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("map step mismatch (-want +got):\n%s", diff)
	}
}

func TestCompilePipeUnknownOpPassesThrough(t *testing.T) {
	got := CompilePipe([]any{map[string]any{"frobnicate": 42}})
	require.Len(t, got, 1)
	assert.Equal(t, Operation{"op": "frobnicate", "value": 42}, got[0])
}

func TestCompilePipeLegacy(t *testing.T) {
	raw := []any{
		map[string]any{"operation": "first"},
		map[string]any{"operation": "limit", "count": 5},
		map[string]any{"operation": "extract", "expression": ".tags[0]"},
	}
	want := []Operation{
		{"op": "first"},
		{"op": "limit", "count": 5},
		// extract cannot be translated mechanically; the lossy
		// fallback is part of the contract.
		{"op": "get", "field": "content"},
	}
	got := CompilePipe(raw)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("legacy pipe mismatch (-want +got):\n%s", diff)
	}
}

func TestCompilePipeLegacyUnknownOp(t *testing.T) {
	got := CompilePipe([]any{map[string]any{"operation": "mystery", "arg": "x"}})
	require.Len(t, got, 1)
	assert.Equal(t, Operation{"op": "mystery", "arg": "x"}, got[0])
}

func TestCompilePipeNil(t *testing.T) {
	assert.Nil(t, CompilePipe(nil))
}
