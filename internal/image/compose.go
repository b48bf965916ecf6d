package imagepkg

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/youruser/photobooth/internal/template"
)

// ResampleFilter is the bilinear filter used for every slot resize.
var ResampleFilter = imaging.Linear

// Compose draws images[i] into slots[i] on a copy of background, in slot
// order. Each photo is stretched to the slot size and replaces the pixels
// underneath it. Slots without a photo keep the background; photos
// without a slot are dropped. background is not modified.
func Compose(background image.Image, slots []template.Slot, images []image.Image) *image.NRGBA {
	canvas := imaging.Clone(background)
	origin := canvas.Bounds().Min

	for i, slot := range slots {
		if i >= len(images) || images[i] == nil {
			continue
		}
		resized := imaging.Resize(images[i], slot.Width, slot.Height, ResampleFilter)
		dst := slot.Rect().Add(origin)
		draw.Draw(canvas, dst, resized, resized.Bounds().Min, draw.Src)
	}
	return canvas
}
