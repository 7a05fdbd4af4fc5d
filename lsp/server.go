// Package lsp is the stylesheet language server. It compiles open .iss
// documents, and the stylesheets embedded in HTML and JS/TS documents, on
// every change and publishes the errors as diagnostics.
package lsp

import (
	"fmt"
	"sync"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/documents"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/lsp/methods/lifecycle"
	"bennypowers.dev/ivory/lsp/methods/textDocument"
	"bennypowers.dev/ivory/lsp/methods/textDocument/diagnostic"
	documentcolor "bennypowers.dev/ivory/lsp/methods/textDocument/documentColor"
	"bennypowers.dev/ivory/lsp/methods/workspace"
	"bennypowers.dev/ivory/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

var _ types.ServerContext = (*Server)(nil)

// Server is the stylesheet language server
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server

	// mu guards the fields below
	mu       sync.RWMutex
	rootPath string
	cfg      *config.Config
	context  *glsp.Context
}

// NewServer creates a server with the default configuration
func NewServer() *Server {
	s := &Server{
		documents: documents.NewManager(),
		cfg:       config.Default(),
	}
	handler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidSave:             notify(s, "textDocument/didSave", textDocument.DidSave),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentColor:               method(s, "textDocument/documentColor", documentcolor.DocumentColor),
		TextDocumentColorPresentation:   method(s, "textDocument/colorPresentation", documentcolor.ColorPresentation),
	}
	s.glspServer = server.NewServer(&handler, lifecycle.ServerName, false)
	return s
}

// RunStdio serves LSP over stdin and stdout until the client disconnects
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

func (s *Server) Document(uri string) *documents.Document { return s.documents.Get(uri) }
func (s *Server) DocumentManager() *documents.Manager     { return s.documents }

func (s *Server) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

func (s *Server) SetRootPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootPath = path
}

func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// LoadConfig reads the config file of the workspace root, with environment
// overrides. Without a root the current config is kept.
func (s *Server) LoadConfig() error {
	root := s.RootPath()
	if root == "" {
		return nil
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.SetupLogging(); err != nil {
		return err
	}
	s.SetConfig(cfg)
	log.Info("Loaded configuration for %s", root)
	return nil
}

// NewCompiler returns a compiler set up from the current config. Nothing is
// written to the output directory while editing.
func (s *Server) NewCompiler() (*compiler.Compiler, error) {
	c := compiler.New()
	if err := s.Config().Apply(c); err != nil {
		return nil, err
	}
	c.OutputDirectory = ""
	return c, nil
}

func (s *Server) GLSPContext() *glsp.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx
}

// PublishDiagnostics compiles the document at uri and sends its diagnostics
// to the client, clearing earlier ones when there are none
func (s *Server) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	if ctx == nil {
		ctx = s.GLSPContext()
	}
	if ctx == nil || ctx.Notify == nil {
		return fmt.Errorf("cannot publish diagnostics for %s: no client context", uri)
	}
	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}
	if diagnostics == nil {
		return nil
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}
