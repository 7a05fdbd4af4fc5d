package documents

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"bennypowers.dev/ivory/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager holds the open documents. It is safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

// Get returns the document for uri, or nil
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[uri]
}

// All returns the open documents ordered by URI
func (m *Manager) All() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*Document, 0, len(m.docs))
	for _, d := range m.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].uri < docs[j].uri })
	return docs
}

// DidOpen starts tracking a document, replacing any previous one at uri
func (m *Manager) DidOpen(uri, languageID string, version int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uri] = NewDocument(uri, languageID, version, content)
}

// DidClose stops tracking a document
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uri]; !ok {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.docs, uri)
	return nil
}

// DidChange applies full or incremental content changes in order
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uri]
	if !ok {
		return fmt.Errorf("document not found: %s", uri)
	}
	content := doc.content
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := splice(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply change to %s: %w", uri, err)
		}
		content = next
	}
	return doc.setContent(content, version)
}

// splice replaces the text in r. Positions count UTF-16 code units.
func splice(content string, r protocol.Range, text string) (string, error) {
	start, err := offset(content, r.Start)
	if err != nil {
		return "", err
	}
	end, err := offset(content, r.End)
	if err != nil {
		return "", err
	}
	if end < start {
		return "", fmt.Errorf("range end %d:%d precedes start %d:%d",
			r.End.Line, r.End.Character, r.Start.Line, r.Start.Character)
	}
	return content[:start] + text + content[end:], nil
}

// offset returns the byte offset of pos in content. A position one line past
// the end addresses the end of the content.
func offset(content string, pos protocol.Position) (int, error) {
	lineStart := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := strings.IndexByte(content[lineStart:], '\n')
		if i < 0 {
			if line+1 == pos.Line && pos.Character == 0 {
				return len(content), nil
			}
			return 0, fmt.Errorf("line %d out of bounds", pos.Line)
		}
		lineStart += i + 1
	}
	text := content[lineStart:]
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if int(pos.Character) > position.LengthUTF16(text) {
		return 0, fmt.Errorf("character %d out of bounds on line %d", pos.Character, pos.Line)
	}
	return lineStart + position.UTF16ToByteOffset(text, int(pos.Character)), nil
}
