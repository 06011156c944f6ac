package video

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Framebuffer is an in-memory Surface.
type Framebuffer struct {
	img  *image.RGBA
	fill image.Uniform
}

// NewFramebuffer returns a Width x Height framebuffer, filled with opaque
// black.
func NewFramebuffer() *Framebuffer {
	fb := &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, Width, Height))}
	fb.SetFillColor(backgroundPalette[0])
	fb.FillRect(0, 0, Width, Height)
	return fb
}

func (fb *Framebuffer) SetFillColor(c color.RGBA) { fb.fill.C = c }

func (fb *Framebuffer) FillRect(x, y, w, h int) {
	draw.Draw(fb.img, image.Rect(x, y, x+w, y+h), &fb.fill, image.Point{}, draw.Src)
}

// Image returns the framebuffer image. Its pixels are modified by subsequent
// fills.
func (fb *Framebuffer) Image() *image.RGBA { return fb.img }

// Screenshot returns a copy of the framebuffer scaled up by scale.
func (fb *Framebuffer) Screenshot(scale int) *image.RGBA {
	scale = max(scale, 1)
	dst := image.NewRGBA(image.Rect(0, 0, Width*scale, Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), fb.img, fb.img.Bounds(), draw.Src, nil)
	return dst
}

func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return f.Close()
}
