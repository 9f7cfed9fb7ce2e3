package config

// Template holds the provenance stamped on an APR at finalization: the
// layout version and the SHA-256 of each source artifact the document
// was built from (catalog file, matrix config).
type Template struct {
	Version      string            `toml:"version"`
	SourceHashes map[string]string `toml:"source_hashes"`
}

// DefaultTemplate is the built-in provenance used when no template
// config is supplied
func DefaultTemplate() *Template {
	return &Template{
		Version:      "v1",
		SourceHashes: map[string]string{},
	}
}

// Clone returns a copy safe to stamp onto a document
func (t *Template) Clone() *Template {
	hashes := make(map[string]string, len(t.SourceHashes))
	for k, v := range t.SourceHashes {
		hashes[k] = v
	}
	return &Template{Version: t.Version, SourceHashes: hashes}
}
