// Package workspace keeps a session's cached view of the user's workspace files
// in step with the bucket.
package workspace

import (
	"encoding/json"
	"sort"
)

// FileSet is the cached set of workspace filenames. It has set semantics; Names
// returns a sorted copy so rendering is stable.
type FileSet struct {
	names map[string]struct{}
}

func NewFileSet(names ...string) *FileSet {
	s := &FileSet{names: make(map[string]struct{}, len(names))}
	s.Add(names...)
	return s
}

// Add unions names into the set. Empty names are ignored.
func (s *FileSet) Add(names ...string) {
	if s.names == nil {
		s.names = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
}

// Clear empties the set.
func (s *FileSet) Clear() {
	s.names = make(map[string]struct{})
}

// Remove drops names from the set; unknown names are ignored.
func (s *FileSet) Remove(names ...string) {
	for _, n := range names {
		delete(s.names, n)
	}
}

// Replace sets the contents to exactly names.
func (s *FileSet) Replace(names []string) {
	s.Clear()
	s.Add(names...)
}

// Merge is the legacy dual-purpose update: an empty input clears the set, a
// non-empty input is unioned in. New code calls Add or Clear directly.
func (s *FileSet) Merge(names []string) {
	if len(names) == 0 {
		s.Clear()
		return
	}
	s.Add(names...)
}

func (s *FileSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s *FileSet) Len() int {
	return len(s.names)
}

func (s *FileSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *FileSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *FileSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	s.Replace(names)
	return nil
}

// Clone returns an independent copy.
func (s *FileSet) Clone() *FileSet {
	if s == nil {
		return NewFileSet()
	}
	return NewFileSet(s.Names()...)
}
