package images

import (
	"fmt"
	xdraw "golang.org/x/image/draw"
	"image"
	"image/draw"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeError is returned by LoadFile when the file exists but is not a supported image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// LoadFile decodes an image file in any registered format. Access failures are returned as
// they come from os.Open.
func LoadFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// FitTo copies img into a new width×height RGBA, stretching it when the size differs.
func FitTo(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}
	return dst
}

// ToAlpha keeps only the alpha channel of img.
func ToAlpha(img image.Image) *image.Alpha {
	alpha := image.NewAlpha(img.Bounds())
	draw.Draw(alpha, alpha.Bounds(), img, img.Bounds().Min, draw.Src)
	return alpha
}
