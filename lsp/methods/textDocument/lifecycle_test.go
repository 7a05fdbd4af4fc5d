package textDocument_test

import (
	"testing"

	"bennypowers.dev/ivory/lsp/methods/textDocument"
	"bennypowers.dev/ivory/lsp/testutil"
	"bennypowers.dev/ivory/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const uri = "file:///site/main.iss"

func TestDocumentLifecycle(t *testing.T) {
	server := testutil.NewMockServerContext()
	req := types.NewRequestContext(server, nil)

	require.NoError(t, textDocument.DidOpen(req, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "iss", Version: 1, Text: "a { x: 1; }"},
	}))
	assert.Equal(t, 1, server.Published[uri])

	require.NoError(t, textDocument.DidChange(req, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{
					Start: protocol.Position{Line: 0, Character: 7},
					End:   protocol.Position{Line: 0, Character: 8},
				},
				Text: "2",
			},
			"ignored",
		},
	}))
	assert.Equal(t, "a { x: 2; }", server.Document(uri).Content())
	assert.Equal(t, 2, server.Published[uri])

	require.NoError(t, textDocument.DidChange(req, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                3,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "b {}"}},
	}))
	assert.Equal(t, "b {}", server.Document(uri).Content())

	require.NoError(t, textDocument.DidSave(req, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Equal(t, 4, server.Published[uri])

	require.NoError(t, textDocument.DidClose(req, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Nil(t, server.Document(uri))
	assert.Empty(t, req.Warnings())
}

func TestDidChangeUnknownDocument(t *testing.T) {
	server := testutil.NewMockServerContext()
	err := textDocument.DidChange(types.NewRequestContext(server, nil), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                1,
		},
	})
	assert.Error(t, err)
	assert.Zero(t, server.Published[uri])
}
