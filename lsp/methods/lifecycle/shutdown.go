package lifecycle

import (
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Shutdown handles the shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	return nil
}

// SetTrace handles $/setTrace
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	log.Debug("Trace level set to %s", params.Value)
	protocol.SetTraceValue(params.Value)
	return nil
}
