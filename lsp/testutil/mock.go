// Package testutil provides a ServerContext for handler tests
package testutil

import (
	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/documents"
	"bennypowers.dev/ivory/lsp/types"
	"github.com/tliron/glsp"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext is an in-memory ServerContext
type MockServerContext struct {
	docs     *documents.Manager
	cfg      *config.Config
	rootPath string
	glspCtx  *glsp.Context

	// LoadConfigFunc replaces LoadConfig when set
	LoadConfigFunc func() error
	// Published counts PublishDiagnostics calls per URI
	Published map[string]int
}

// NewMockServerContext creates a mock with the default config
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:      documents.NewManager(),
		cfg:       config.Default(),
		Published: make(map[string]int),
	}
}

func (m *MockServerContext) Document(uri string) *documents.Document { return m.docs.Get(uri) }
func (m *MockServerContext) DocumentManager() *documents.Manager     { return m.docs }
func (m *MockServerContext) RootPath() string                        { return m.rootPath }
func (m *MockServerContext) SetRootPath(path string)                 { m.rootPath = path }
func (m *MockServerContext) Config() *config.Config                  { return m.cfg }
func (m *MockServerContext) SetConfig(cfg *config.Config)            { m.cfg = cfg }
func (m *MockServerContext) GLSPContext() *glsp.Context              { return m.glspCtx }
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context)        { m.glspCtx = ctx }

func (m *MockServerContext) LoadConfig() error {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc()
	}
	return nil
}

func (m *MockServerContext) NewCompiler() (*compiler.Compiler, error) {
	c := compiler.New()
	if err := m.cfg.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *MockServerContext) PublishDiagnostics(_ *glsp.Context, uri string) error {
	m.Published[uri]++
	return nil
}
