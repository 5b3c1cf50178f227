package types

import (
	"fmt"
	"strings"
)

// Slot names one of the two independent upload targets.
type Slot string

const (
	SlotLabel  Slot = "label"
	SlotDamage Slot = "damage"
)

// ParseSlot maps a route parameter to a Slot.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotLabel:
		return SlotLabel, nil
	case SlotDamage:
		return SlotDamage, nil
	default:
		return "", fmt.Errorf("unknown slot %q", s)
	}
}

// MediaKind is derived from the declared MIME type.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindOther MediaKind = "other"
)

var (
	AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png"}
	AllowedVideoTypes = []string{"video/mp4"}
)

// MediaFile is one user-selected file. Content is kept in memory the same way
// a browser keeps a File handle until the form is submitted.
type MediaFile struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Content []byte `json:"-"`
}

// MediaKey is the identity triple used for deduplication.
type MediaKey struct {
	Name string
	Size int64
	Type string
}

func (k MediaKey) String() string {
	return fmt.Sprintf("%s|%d|%s", k.Name, k.Size, k.Type)
}

func (f MediaFile) Key() MediaKey {
	return MediaKey{Name: f.Name, Size: f.Size, Type: f.Type}
}

// Kind reports image for the accepted image types, video for video/mp4.
// Anything else under video/ also counts as video so mixed-mode checks still
// see it.
func (f MediaFile) Kind() MediaKind {
	t := strings.ToLower(f.Type)
	switch {
	case IsAllowedImageType(t):
		return MediaKindImage
	case IsAllowedVideoType(t), strings.HasPrefix(t, "video/"):
		return MediaKindVideo
	case strings.HasPrefix(t, "image/"):
		return MediaKindImage
	default:
		return MediaKindOther
	}
}

func IsAllowedImageType(t string) bool {
	for _, a := range AllowedImageTypes {
		if strings.EqualFold(t, a) {
			return true
		}
	}
	return false
}

func IsAllowedVideoType(t string) bool {
	for _, a := range AllowedVideoTypes {
		if strings.EqualFold(t, a) {
			return true
		}
	}
	return false
}
