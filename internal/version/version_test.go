package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) {
	v, c, b, r := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = v, c, b, r
	})
	Version, GitCommit, BuildTime = "dev", "unknown", "unknown"
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
}

func TestGet(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		reset(t)
		assert.Equal(t, "dev", Get())
	})
	t.Run("ldflags", func(t *testing.T) {
		reset(t)
		Version = "v1.2.3"
		assert.Equal(t, "v1.2.3", Get())
	})
	t.Run("build info", func(t *testing.T) {
		reset(t)
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
		}
		assert.Equal(t, "v0.4.0", Get())
	})
	t.Run("devel build info", func(t *testing.T) {
		reset(t)
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
		}
		assert.Equal(t, "dev", Get())
	})
}

func TestFull(t *testing.T) {
	reset(t)
	assert.Equal(t, "ivory dev", Full())

	Version = "v1.0.0"
	GitCommit = "abcdef1234"
	assert.Equal(t, "ivory v1.0.0 (commit abcdef1)", Full())

	BuildTime = "2026-10-18"
	assert.Equal(t, "ivory v1.0.0 (commit abcdef1, built 2026-10-18)", Full())
}
