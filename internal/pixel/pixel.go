// Package pixel holds the coordinate and color primitives shared by the
// canvas client, the diff engine and the task scheduler.
package pixel

import (
	"fmt"
	"strings"
)

// Coord is a pixel position on the canvas. Bounds are only known once a
// snapshot has been fetched.
type Coord struct {
	X, Y int
}

// RGB is a canvas color. Each channel is 0-255.
type RGB struct {
	R, G, B byte
}

// Hex renders the color as a lowercase 6 hex digit string, e.g. "ff00aa".
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a 6 hex digit string (case-insensitive) into an RGB.
// It returns an error for any string that ValidHex rejects.
func ParseHex(s string) (RGB, error) {
	if !ValidHex(s) {
		return RGB{}, fmt.Errorf("pixel: %q is not a valid 6 hex digit color", s)
	}
	var r, g, b byte
	_, err := fmt.Sscanf(strings.ToLower(s), "%02x%02x%02x", &r, &g, &b)
	if err != nil {
		return RGB{}, fmt.Errorf("pixel: %q is not a valid 6 hex digit color: %w", s, err)
	}
	return RGB{R: r, G: g, B: b}, nil
}

// ValidHex reports whether s matches [0-9a-fA-F]{6}.
func ValidHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
