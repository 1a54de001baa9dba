// Package screenshot saves rendered panels as PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Capture writes screenshots into one directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a capture handler writing to outputDir.
func New(outputDir, prefix string) *Capture {
	if prefix == "" {
		prefix = "meshview"
	}
	return &Capture{outputDir: outputDir, prefix: prefix, now: time.Now}
}

// FromPixels builds an image from bottom-up RGBA rows as read back from GL.
func FromPixels(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcOffset := (height - 1 - y) * rowSize
		dstOffset := y * img.Stride
		copy(img.Pix[dstOffset:dstOffset+rowSize], pixels[srcOffset:srcOffset+rowSize])
	}
	return img, nil
}

// CaptureFromPixels saves GL pixel data; label (usually the mesh name) is
// added to the file name. Returns the written path.
func (c *Capture) CaptureFromPixels(pixels []byte, width, height int, label string) (string, error) {
	img, err := FromPixels(pixels, width, height)
	if err != nil {
		return "", err
	}
	return c.Save(img, label)
}

// Save encodes img as PNG.
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

// Filename generates a screenshot path without saving.
func (c *Capture) Filename(label string) string {
	parts := []string{c.prefix}
	if label = sanitize(label); label != "" {
		parts = append(parts, label)
	}
	parts = append(parts, c.now().Format("2006-01-02_15-04-05.000"))

	filename := strings.Join(parts, "_") + ".png"
	if c.outputDir != "" {
		filename = filepath.Join(c.outputDir, filename)
	}
	return filename
}

func sanitize(label string) string {
	label = strings.TrimSuffix(filepath.Base(filepath.ToSlash(label)), filepath.Ext(label))
	if label == "." || label == "/" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, label)
}
