// Package texture decodes material images into RGBA pixels for upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for image data no decoder accepts.
var ErrUnsupported = errors.New("unsupported image format")

// Decode decodes data into an RGBA image.
// TGA has no signature, so it is picked by mimeType or the extension of name;
// every other format is sniffed from the data.
func Decode(data []byte, mimeType, name string) (*image.RGBA, error) {
	if isTGA(mimeType, name) {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, describe(mimeType, name))
	}
	if err != nil {
		return nil, err
	}
	return ToRGBA(img), nil
}

func isTGA(mimeType, name string) bool {
	switch strings.ToLower(mimeType) {
	case "image/tga", "image/x-tga", "image/x-targa":
		return true
	}
	return strings.EqualFold(path.Ext(name), ".tga")
}

func describe(mimeType, name string) string {
	switch {
	case mimeType != "":
		return mimeType
	case name != "":
		return name
	}
	return "embedded image"
}

// ToRGBA returns img as an RGBA image with its origin at (0, 0).
// An image already in that form is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}
