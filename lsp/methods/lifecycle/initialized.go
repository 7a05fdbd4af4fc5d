package lifecycle

import (
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the initialized notification: the client context is
// kept for later notifications and the workspace config is read
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	req.Server.SetGLSPContext(req.GLSP)
	req.AddWarning(req.Server.LoadConfig())
	return nil
}
