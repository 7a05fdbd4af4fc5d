// Package lifecycle handles server initialization and shutdown
package lifecycle

import (
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/uriutil"
	"bennypowers.dev/ivory/internal/version"
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to clients in serverInfo
const ServerName = "ivory"

// Initialize handles the initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	client := "unknown"
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", client)

	switch {
	case params.RootURI != nil:
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
	case params.RootPath != nil:
		req.Server.SetRootPath(*params.RootPath)
	}
	if root := req.Server.RootPath(); root != "" {
		log.Info("Workspace root: %s", root)
	}

	sync := protocol.TextDocumentSyncKindIncremental
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: ptr(true),
				Change:    &sync,
				Save:      ptr(true),
			},
			ColorProvider: true,
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: ptr(version.Get()),
		},
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}
