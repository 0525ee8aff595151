// Package raster turns documents into page images.
package raster

import (
	"context"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Rasterizer converts a document into one image per page, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc []byte) ([]image.Image, error)
}

// Resize scales img down to maxWidth, keeping its aspect ratio. Images that
// already fit, or a maxWidth <= 0, are returned unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	height := int(math.Round(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
