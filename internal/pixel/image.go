package pixel

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Grid is a decoded, addressable width x height RGB image.
type Grid struct {
	Width, Height int
	Pixels        []RGB // row-major, len == Width*Height
}

// At returns the color at (x, y). Callers must keep x,y in bounds.
func (g *Grid) At(x, y int) RGB {
	return g.Pixels[y*g.Width+x]
}

// ErrBadImage is returned when the input cannot be decoded as a PNG.
var ErrBadImage = fmt.Errorf("pixel: malformed image")

// DecodeBase64PNG decodes a base64-encoded PNG into an RGB grid, dropping
// any alpha channel (the canvas has no notion of transparency).
func DecodeBase64PNG(b64 string) (*Grid, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	grid := &Grid{Width: w, Height: h, Pixels: make([]RGB, w*h)}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			r, g, b, _ := img.At(bounds.Min.X+i, bounds.Min.Y+j).RGBA()
			grid.Pixels[j*w+i] = RGB{R: byte(r >> 8), G: byte(g >> 8), B: byte(b >> 8)}
		}
	}
	return grid, nil
}

// EncodeBase64PNG serializes a grid back into a base64-encoded PNG, the
// inverse of DecodeBase64PNG. Every pixel is written fully opaque.
func EncodeBase64PNG(g *Grid) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for j := 0; j < g.Height; j++ {
		for i := 0; i < g.Width; i++ {
			px := g.At(i, j)
			img.SetRGBA(i, j, color.RGBA{R: px.R, G: px.G, B: px.B, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("pixel: encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
