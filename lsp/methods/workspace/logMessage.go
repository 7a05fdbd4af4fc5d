// Package workspace handles workspace notifications and client messages
package workspace

import (
	"fmt"

	"bennypowers.dev/ivory/internal/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LogError logs to stderr and, given a context, to the client's log
func LogError(ctx *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Error("%s", message)
	notify(ctx, protocol.MessageTypeError, message)
}

// LogWarning logs to stderr and, given a context, to the client's log
func LogWarning(ctx *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Warn("%s", message)
	notify(ctx, protocol.MessageTypeWarning, message)
}

// notify sends window/logMessage without blocking the handler
func notify(ctx *glsp.Context, kind protocol.MessageType, message string) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	go ctx.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    kind,
		Message: message,
	})
}
