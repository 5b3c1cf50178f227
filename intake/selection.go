package intake

import (
	"fmt"
	"strings"

	"github.com/moyoez/claimdesk/types"
)

// Selection is the ordered, deduplicated file list of one slot.
// It is not safe for concurrent use; Session guards it.
type Selection struct {
	slot        types.Slot
	files       []types.MediaFile
	seen        map[types.MediaKey]struct{}
	singleVideo bool
}

func NewSelection(slot types.Slot) *Selection {
	return &Selection{
		slot: slot,
		seen: make(map[types.MediaKey]struct{}),
	}
}

func (s *Selection) Slot() types.Slot {
	return s.slot
}

// Add merges an already validated batch and returns how many files were
// actually inserted. A single video on the damage slot replaces whatever was
// selected before.
func (s *Selection) Add(batch []types.MediaFile) int {
	if s.slot == types.SlotDamage && len(batch) == 1 && batch[0].Kind() == types.MediaKindVideo {
		s.Clear()
	}
	added := 0
	for _, f := range batch {
		k := f.Key()
		if _, dup := s.seen[k]; dup {
			continue
		}
		s.seen[k] = struct{}{}
		s.files = append(s.files, f)
		added++
	}
	s.refreshMode()
	return added
}

// Remove drops the first entry named name and rebuilds the backing list.
func (s *Selection) Remove(name string) error {
	idx := -1
	for i, f := range s.files {
		if f.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotSelected, name)
	}
	rebuilt := make([]types.MediaFile, 0, len(s.files)-1)
	rebuilt = append(rebuilt, s.files[:idx]...)
	rebuilt = append(rebuilt, s.files[idx+1:]...)
	s.files = rebuilt
	s.seen = make(map[types.MediaKey]struct{}, len(rebuilt))
	for _, f := range rebuilt {
		s.seen[f.Key()] = struct{}{}
	}
	s.refreshMode()
	return nil
}

func (s *Selection) Clear() {
	s.files = nil
	s.seen = make(map[types.MediaKey]struct{})
	s.singleVideo = false
}

// Files returns a copy of the current entries in insertion order.
func (s *Selection) Files() []types.MediaFile {
	out := make([]types.MediaFile, len(s.files))
	copy(out, s.files)
	return out
}

// Lookup returns the first entry named name.
func (s *Selection) Lookup(name string) (types.MediaFile, bool) {
	for _, f := range s.files {
		if f.Name == name {
			return f, true
		}
	}
	return types.MediaFile{}, false
}

func (s *Selection) Len() int {
	return len(s.files)
}

func (s *Selection) Empty() bool {
	return len(s.files) == 0
}

// SingleVideo reports the damage slot's video display mode.
func (s *Selection) SingleVideo() bool {
	return s.singleVideo
}

// Summary is the file note under the drop area.
func (s *Selection) Summary() string {
	switch n := len(s.files); {
	case n == 0:
		return ""
	case n <= 3:
		names := make([]string, n)
		for i, f := range s.files {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	default:
		return fmt.Sprintf("%d files selected", n)
	}
}

func (s *Selection) refreshMode() {
	s.singleVideo = false
	if s.slot != types.SlotDamage {
		return
	}
	for _, f := range s.files {
		if f.Kind() == types.MediaKindVideo {
			s.singleVideo = true
			return
		}
	}
}
