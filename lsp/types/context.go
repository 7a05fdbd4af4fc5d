// Package types defines the server interface shared by the LSP method handlers
package types

import (
	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/documents"
	"github.com/tliron/glsp"
)

// ServerContext provides what LSP handlers need from the server, so handlers
// can be tested against a mock
type ServerContext interface {
	// Documents
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager

	// Workspace
	RootPath() string
	SetRootPath(path string)

	// Configuration
	Config() *config.Config
	SetConfig(cfg *config.Config)
	// LoadConfig reads the workspace config file
	LoadConfig() error
	// NewCompiler returns a compiler set up from the current config
	NewCompiler() (*compiler.Compiler, error)

	// LSP context, for notifications sent outside a request
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	PublishDiagnostics(ctx *glsp.Context, uri string) error
}
