// Package textDocument handles document synchronization
package textDocument

import (
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles textDocument/didOpen
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	log.Info("Document opened: %s (%s, version %d)", doc.URI, doc.LanguageID, doc.Version)
	req.Server.DocumentManager().DidOpen(doc.URI, doc.LanguageID, int(doc.Version), doc.Text)
	publish(req, doc.URI)
	return nil
}

// DidChange handles textDocument/didChange
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		}
	}
	log.Debug("Document changed: %s (version %d, %d changes)", uri, params.TextDocument.Version, len(changes))
	if err := req.Server.DocumentManager().DidChange(uri, int(params.TextDocument.Version), changes); err != nil {
		return err
	}
	publish(req, uri)
	return nil
}

// DidSave handles textDocument/didSave. Included files may have changed on
// disk, so every open document is recompiled.
func DidSave(req *types.RequestContext, params *protocol.DidSaveTextDocumentParams) error {
	for _, doc := range req.Server.DocumentManager().All() {
		publish(req, doc.URI())
	}
	return nil
}

// DidClose handles textDocument/didClose
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Info("Document closed: %s", uri)
	return req.Server.DocumentManager().DidClose(uri)
}

func publish(req *types.RequestContext, uri string) {
	ctx := req.Server.GLSPContext()
	if ctx == nil {
		ctx = req.GLSP
	}
	req.AddWarning(req.Server.PublishDiagnostics(ctx, uri))
}
