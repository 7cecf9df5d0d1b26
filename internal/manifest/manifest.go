package manifest

import (
	"sort"

	"github.com/goccy/go-json"
)

// FileName is the name of the manifest file inside a destination directory.
const FileName = "references.json"

// Manifest maps ISRCs to the paths stored for them, in insertion order.
type Manifest struct {
	entries map[string][]string
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{entries: make(map[string][]string)}
}

// FromEntries builds a manifest holding a copy of entries.
func FromEntries(entries map[string][]string) *Manifest {
	m := New()
	for isrc, paths := range entries {
		m.entries[isrc] = append([]string(nil), paths...)
	}
	return m
}

// Has reports whether at least one path is recorded for isrc.
func (m *Manifest) Has(isrc string) bool {
	return len(m.entries[isrc]) > 0
}

// Paths returns a copy of the paths recorded for isrc.
func (m *Manifest) Paths(isrc string) []string {
	return append([]string(nil), m.entries[isrc]...)
}

// Add appends path to the entry for isrc. A path already recorded for the
// same ISRC is not added twice. It reports whether the path was appended.
func (m *Manifest) Add(isrc, path string) bool {
	if m.entries == nil {
		m.entries = make(map[string][]string)
	}
	for _, existing := range m.entries[isrc] {
		if existing == path {
			return false
		}
	}
	m.entries[isrc] = append(m.entries[isrc], path)
	return true
}

// Len returns the number of ISRCs with an entry.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// ISRCs returns the recorded ISRCs in sorted order.
func (m *Manifest) ISRCs() []string {
	isrcs := make([]string, 0, len(m.entries))
	for isrc := range m.entries {
		isrcs = append(isrcs, isrc)
	}
	sort.Strings(isrcs)
	return isrcs
}

// Entries returns a deep copy of the manifest content.
func (m *Manifest) Entries() map[string][]string {
	out := make(map[string][]string, len(m.entries))
	for isrc, paths := range m.entries {
		out[isrc] = append([]string(nil), paths...)
	}
	return out
}

// MarshalJSON encodes the manifest as a JSON object of ISRC to path array.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	if m.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.entries)
}

// UnmarshalJSON decodes a JSON object of ISRC to path array.
// A JSON null decodes to an empty manifest.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var entries map[string][]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	if entries == nil {
		entries = make(map[string][]string)
	}
	m.entries = entries
	return nil
}
