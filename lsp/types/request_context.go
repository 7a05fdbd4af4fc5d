package types

import "github.com/tliron/glsp"

// RequestContext carries the server and protocol context of one LSP call,
// and collects warnings that do not fail it
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

// NewRequestContext creates a request context
func NewRequestContext(server ServerContext, ctx *glsp.Context) *RequestContext {
	return &RequestContext{Server: server, GLSP: ctx}
}

// AddWarning records a non-fatal problem; nil is ignored
func (r *RequestContext) AddWarning(err error) {
	if err != nil {
		r.warnings = append(r.warnings, err)
	}
}

// Warnings returns the recorded warnings
func (r *RequestContext) Warnings() []error {
	return r.warnings
}
