package template

import (
	"image"
	"sort"

	"github.com/youruser/photobooth/internal/apperror"
)

// Slot is the rectangle on the background a single photo is drawn into.
type Slot struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the slot as an image.Rectangle in canvas coordinates.
func (s Slot) Rect() image.Rectangle {
	return image.Rect(s.X, s.Y, s.X+s.Width, s.Y+s.Height)
}

// Template is a background plus the slot arrangements it declares, keyed
// by photo count. A Template is read-only once loaded.
type Template struct {
	ID         string
	Dir        string
	Background image.Image
	Layouts    map[int][]Slot
}

// Slots returns the layout declared for exactly count photos. There is no
// fallback to a smaller or larger layout.
func (t *Template) Slots(count int) ([]Slot, error) {
	slots, ok := t.Layouts[count]
	if !ok || count <= 0 {
		return nil, apperror.New(apperror.CodeNoMatchingLayout, "No layout for %d photo(s)", count)
	}
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out, nil
}

// Counts lists the photo counts the template has layouts for, ascending.
func (t *Template) Counts() []int {
	out := make([]int, 0, len(t.Layouts))
	for n := range t.Layouts {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ResolveSlots is a convenience for t.Slots(count).
func ResolveSlots(t *Template, count int) ([]Slot, error) {
	return t.Slots(count)
}
