// Package snapshot saves rendered frames as PNG files.
package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// Capture writes screenshots into a directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a capture handler. outputDir may start with "~".
func New(outputDir, prefix string) (*Capture, error) {
	dir, err := homedir.Expand(outputDir)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", outputDir, err)
	}
	return &Capture{outputDir: dir, prefix: prefix, now: time.Now}, nil
}

// FromPixels saves bottom-up RGBA rows, as read back from OpenGL, and
// returns the written path.
func (c *Capture) FromPixels(pixels []byte, width, height int, label string) (string, error) {
	img, err := Flip(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img, label)
}

// Save encodes img into a timestamped file. label, typically the model
// name, is folded into the filename.
func (c *Capture) Save(img image.Image, label string) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename(label)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// Filename returns the path Save would write to now.
func (c *Capture) Filename(label string) string {
	parts := []string{c.prefix}
	if s := sanitize(label); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, c.now().Format("2006-01-02_15-04-05.000"))
	return filepath.Join(c.outputDir, strings.Join(parts, "_")+".png")
}

// Flip converts bottom-up RGBA rows into a top-down image.
func Flip(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

func sanitize(label string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ', r == '.', r == '_':
			return '_'
		}
		return -1
	}, label)
	return strings.Trim(s, "_")
}
