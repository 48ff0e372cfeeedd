package schema

import (
	"path/filepath"
)

// Source identifies where a widget schema originated so loaders can operate
// on files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindRaw  SourceKind = "raw"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type rawSource struct {
	name string
}

func (s rawSource) Location() string {
	return s.name
}

func (s rawSource) Kind() SourceKind {
	return SourceKindRaw
}

// SourceFromBytes labels an in-memory document, typically embedded in code.
func SourceFromBytes(name string) Source {
	return rawSource{name: name}
}
