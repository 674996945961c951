package pixel

import "testing"

func solidGrid(w, h int, c RGB) *Grid {
	g := &Grid{Width: w, Height: h, Pixels: make([]RGB, w*h)}
	for i := range g.Pixels {
		g.Pixels[i] = c
	}
	return g
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := solidGrid(3, 2, RGB{R: 10, G: 20, B: 30})
	want.Pixels[1] = RGB{R: 255, G: 0, B: 128}

	b64, err := EncodeBase64PNG(want)
	if err != nil {
		t.Fatalf("EncodeBase64PNG: %v", err)
	}

	got, err := DecodeBase64PNG(b64)
	if err != nil {
		t.Fatalf("DecodeBase64PNG: %v", err)
	}
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("dims = %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	for i := range want.Pixels {
		if got.Pixels[i] != want.Pixels[i] {
			t.Fatalf("pixel %d = %+v, want %+v", i, got.Pixels[i], want.Pixels[i])
		}
	}
}

func TestDecodeBase64PNGMalformed(t *testing.T) {
	if _, err := DecodeBase64PNG("not-base64!!"); err == nil {
		t.Fatal("expected error for malformed base64")
	}
	validB64ButNotPNG := "aGVsbG8gd29ybGQ=" // "hello world"
	if _, err := DecodeBase64PNG(validB64ButNotPNG); err == nil {
		t.Fatal("expected error for non-PNG payload")
	}
}
