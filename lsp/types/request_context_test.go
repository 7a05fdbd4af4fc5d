package types_test

import (
	"errors"
	"testing"

	"bennypowers.dev/ivory/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/tliron/glsp"
)

func TestRequestContextWarnings(t *testing.T) {
	ctx := &glsp.Context{Method: "test"}
	req := types.NewRequestContext(nil, ctx)
	assert.Same(t, ctx, req.GLSP)
	assert.Empty(t, req.Warnings())

	req.AddWarning(nil)
	assert.Empty(t, req.Warnings())

	w := errors.New("unparsable color")
	req.AddWarning(w)
	assert.Equal(t, []error{w}, req.Warnings())
}
