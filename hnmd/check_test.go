package hnmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDocumentClean(t *testing.T) {
	doc, err := Compile("[if $note.content]\n{$note.content}\n[/if]")
	require.NoError(t, err)
	assert.Empty(t, CheckDocument(doc))
}

func TestCheckDocumentBadCondition(t *testing.T) {
	doc, err := Compile("[if $a ==]\nx\n[/if]")
	require.NoError(t, err)
	diags := CheckDocument(doc)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "condition")
	assert.Equal(t, "elements[0]", diags[0].Path)
}

func TestCheckDocumentLoopSource(t *testing.T) {
	// Lenient compile lets a bad loop source through; the checker
	// reports it.
	doc, err := Compile("[each feed as $n]\nx\n[/each]")
	require.NoError(t, err)
	diags := CheckDocument(doc)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "loop source")
}

func TestCheckDocumentNestedPath(t *testing.T) {
	doc, err := Compile("[div]\n[if $x ~~ broken]\ny\n[/if]\n[/div]")
	require.NoError(t, err)
	diags := CheckDocument(doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "elements[0].elements[0]", diags[0].Path)
}
