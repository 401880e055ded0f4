// Package imagegen produces test input images: ImageMagick when
// present, a built-in PNG writer otherwise. No format contract beyond
// "decodable by the target".
package imagegen

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"os/exec"
)

type Generator interface {
	Name() string
	Generate(width, height int, path string) error
}

// Detect prefers ImageMagick for parity with the historical harness,
// falling back to the built-in writer.
func Detect() Generator {
	if _, err := exec.LookPath("convert"); err == nil {
		return Magick{}
	}
	return PNG{}
}

// Magick invokes ImageMagick's convert with a red-blue gradient.
type Magick struct{}

func (Magick) Name() string { return "imagemagick" }

func (Magick) Generate(width, height int, path string) error {
	cmd := exec.Command("convert", "-size", fmt.Sprintf("%dx%d", width, height), "gradient:red-blue", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("convert: %v: %s", err, out)
	}
	return nil
}

// PNG draws a gradient with scattered rectangles, enough structure to
// exercise a decoder and a blur pass.
type PNG struct{}

func (PNG) Name() string { return "png" }

func (PNG) Generate(width, height int, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(255 * x / width)
			img.Set(x, y, color.RGBA{R: 255 - r, B: r, A: 255})
		}
	}

	rng := rand.New(rand.NewSource(int64(width)<<16 | int64(height)))
	rects := min(100, width*height/1000)
	for i := 0; i < rects; i++ {
		x1, y1 := rng.Intn(width/2+1), rng.Intn(height/2+1)
		x2 := x1 + rng.Intn(width/4+1)
		y2 := y1 + rng.Intn(height/4+1)
		c := color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
		fill(img, x1, y1, x2, y2, c)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func fill(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	bounds := img.Bounds()
	for y := y1; y < y2 && y < bounds.Max.Y; y++ {
		for x := x1; x < x2 && x < bounds.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
