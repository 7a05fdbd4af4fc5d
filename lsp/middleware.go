package lsp

import (
	"fmt"
	"runtime/debug"

	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/lsp/methods/workspace"
	"bennypowers.dev/ivory/lsp/types"
	"github.com/tliron/glsp"
)

// method wraps a request handler with panic recovery, logging and error
// context, returning the function type protocol.Handler expects
func method[P, R any](
	s types.ServerContext,
	name string,
	handler func(*types.RequestContext, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(ctx *glsp.Context, params P) (result R, err error) {
		defer recoverPanic(ctx, name, &err)
		req := types.NewRequestContext(s, ctx)
		log.Debug("%s started", name)
		result, err = handler(req, params)
		if err = finish(req, name, err); err != nil {
			var zero R
			return zero, err
		}
		return result, nil
	}
}

// notify wraps a notification handler
func notify[P any](
	s types.ServerContext,
	name string,
	handler func(*types.RequestContext, P) error,
) func(*glsp.Context, P) error {
	return func(ctx *glsp.Context, params P) (err error) {
		defer recoverPanic(ctx, name, &err)
		req := types.NewRequestContext(s, ctx)
		log.Debug("%s started", name)
		return finish(req, name, handler(req, params))
	}
}

// noParam wraps a handler without params, such as shutdown
func noParam(
	s types.ServerContext,
	name string,
	handler func(*types.RequestContext) error,
) func(*glsp.Context) error {
	return func(ctx *glsp.Context) (err error) {
		defer recoverPanic(ctx, name, &err)
		req := types.NewRequestContext(s, ctx)
		log.Debug("%s started", name)
		return finish(req, name, handler(req))
	}
}

// finish logs the warnings and error of a completed handler
func finish(req *types.RequestContext, name string, err error) error {
	for _, w := range req.Warnings() {
		workspace.LogWarning(req.GLSP, "%s: %v", name, w)
	}
	if err != nil {
		workspace.LogError(req.GLSP, "%s: %v", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("%s completed", name)
	return nil
}

func recoverPanic(ctx *glsp.Context, name string, err *error) {
	if r := recover(); r != nil {
		log.Error("PANIC in %s: %v\n%s", name, r, debug.Stack())
		workspace.LogError(ctx, "Internal error in %s: %v", name, r)
		*err = fmt.Errorf("internal error in %s", name)
	}
}
