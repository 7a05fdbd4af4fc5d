// Package documents tracks the text of documents open in the language server
package documents

import (
	"fmt"

	"bennypowers.dev/ivory/internal/parser/embedded"
	"bennypowers.dev/ivory/internal/uriutil"
)

// Document is an open text document
type Document struct {
	uri        string
	languageID string
	version    int
	content    string
}

// NewDocument creates a document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{uri: uri, languageID: languageID, version: version, content: content}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int       { return d.version }
func (d *Document) Content() string    { return d.content }

// Path returns the file system path of the document
func (d *Document) Path() string {
	return uriutil.URIToPath(d.uri)
}

// Language returns the stylesheet language of the document, falling back to
// the file extension when the client's language ID is not one we compile.
// It is empty for documents without stylesheets.
func (d *Document) Language() string {
	if embedded.IsSupportedLanguage(d.languageID) {
		return d.languageID
	}
	return embedded.LanguageOf(d.Path())
}

// setContent replaces the content, rejecting versions older than the current one
func (d *Document) setContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("stale update: document is at version %d, update is version %d", d.version, version)
	}
	d.content = content
	d.version = version
	return nil
}
