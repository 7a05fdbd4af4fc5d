package uriutil_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"bennypowers.dev/ivory/internal/uriutil"
	"github.com/stretchr/testify/assert"
)

func TestPathToURI(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX paths")
	}
	tests := []struct {
		path, want string
	}{
		{"/home/user/site", "file:///home/user/site"},
		{"/", "file:///"},
		{"/home/user/my styles/a.iss", "file:///home/user/my%20styles/a.iss"},
		{"/tmp/ünï.iss", "file:///tmp/%C3%BCn%C3%AF.iss"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, uriutil.PathToURI(tt.path))
		})
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri, want string
	}{
		{"file:///home/user/site/main.iss", "/home/user/site/main.iss"},
		{"file:///home/user/my%20styles/a.iss", "/home/user/my styles/a.iss"},
		{"file://localhost/etc/a.iss", "/etc/a.iss"},
		{"file:///C:/styles/a.iss", "C:/styles/a.iss"},
		{"/plain/path.iss", "/plain/path.iss"},
		{"untitled:Untitled-1", "untitled:Untitled-1"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), uriutil.URIToPath(tt.uri))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a b", "c.iss")
	assert.Equal(t, path, uriutil.URIToPath(uriutil.PathToURI(path)))
}
