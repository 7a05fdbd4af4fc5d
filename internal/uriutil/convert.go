// Package uriutil converts between file:// URIs and file system paths
package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI returns the file:// URI of path, made absolute. Segments are
// percent-encoded; Windows drive paths get a leading slash (file:///C:/x)
// and UNC paths keep their host (file://server/share).
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	host := ""
	if runtime.GOOS == "windows" && strings.HasPrefix(path, `\\`) {
		rest := filepath.ToSlash(strings.TrimPrefix(path, `\\`))
		host, path, _ = strings.Cut(rest, "/")
		path = "/" + path
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file://" + host + strings.Join(segments, "/")
}

// URIToPath returns the file system path of a file:// URI. Anything else is
// treated leniently as a path with an optional file:// prefix.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		path := strings.TrimPrefix(uri, "file://")
		return filepath.FromSlash(trimDriveSlash(path))
	}
	if u.Host != "" && u.Host != "localhost" {
		if runtime.GOOS == "windows" {
			return `\\` + u.Host + filepath.FromSlash(u.Path)
		}
		return u.Host + u.Path
	}
	return filepath.FromSlash(trimDriveSlash(u.Path))
}

// trimDriveSlash turns /C:/x into C:/x
func trimDriveSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		return path[1:]
	}
	return path
}
