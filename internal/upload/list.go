package upload

import (
	"fmt"

	"shotcraft/internal/domain"
)

// ImageList is the ordered set of images a session will send to the model.
// It is not safe for concurrent use; the owning session serialises access.
type ImageList struct {
	items []SourceImage
}

// Append adds a batch to the end, preserving order.
func (l *ImageList) Append(batch ...SourceImage) {
	l.items = append(l.items, batch...)
}

// Remove deletes the image at index i. Out of range indexes leave the list
// untouched.
func (l *ImageList) Remove(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("remove image %d of %d: %w", i, len(l.items), domain.ErrIndexOutOfRange)
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return nil
}

func (l *ImageList) Len() int {
	return len(l.items)
}

// Items returns a copy of the list.
func (l *ImageList) Items() []SourceImage {
	out := make([]SourceImage, len(l.items))
	copy(out, l.items)
	return out
}
