package workspace

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Section is the settings key the client sends our configuration under
const Section = "ivory"

// DidChangeConfiguration handles workspace/didChangeConfiguration. Settings
// under "ivory" replace the config; without them the workspace config file
// is read again. Open documents are then recompiled.
func DidChangeConfiguration(req *types.RequestContext, params *protocol.DidChangeConfigurationParams) error {
	cfg, err := parseSettings(params.Settings, req.Server.RootPath())
	switch {
	case err != nil:
		req.AddWarning(err)
	case cfg != nil:
		req.Server.SetConfig(cfg)
		log.Info("Configuration updated from client settings")
	default:
		if err := req.Server.LoadConfig(); err != nil {
			req.AddWarning(err)
		}
	}

	ctx := req.Server.GLSPContext()
	if ctx == nil {
		ctx = req.GLSP
	}
	for _, doc := range req.Server.DocumentManager().All() {
		if err := req.Server.PublishDiagnostics(ctx, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}

// parseSettings decodes the ivory section of client settings over the
// defaults. It returns nil when the section is absent.
func parseSettings(settings any, root string) (*config.Config, error) {
	m, ok := settings.(map[string]any)
	if !ok {
		return nil, nil
	}
	section, ok := m[Section]
	if !ok || section == nil {
		return nil, nil
	}
	data, err := json.Marshal(section)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s settings: %w", Section, err)
	}
	cfg := config.Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s settings: %w", Section, err)
	}
	cfg.Dir = root
	return cfg, nil
}
