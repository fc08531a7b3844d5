package enums

import "fmt"

// ItemKind identifies the content a playlist item points at.
type ItemKind string

const (
	ItemKindImage ItemKind = "image"
	ItemKindVideo ItemKind = "video"
	ItemKindLink  ItemKind = "link"
)

var validItemKinds = []ItemKind{
	ItemKindImage,
	ItemKindVideo,
	ItemKindLink,
}

// String returns the literal string for the kind.
func (k ItemKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is known.
func (k ItemKind) IsValid() bool {
	for _, candidate := range validItemKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsMedia reports whether the kind resolves against the media_files table.
func (k ItemKind) IsMedia() bool {
	return k == ItemKindImage || k == ItemKindVideo
}

// ParseItemKind converts raw input into an ItemKind.
func ParseItemKind(value string) (ItemKind, error) {
	for _, candidate := range validItemKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item kind %q", value)
}
