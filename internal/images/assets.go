package images

import (
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"image"
	"image/color"
	"image/draw"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const (
	spriteScale  = 3
	spriteMargin = 6
	maskRadius   = 12

	MaskFilename = "icon_bar_mask.png"
)

var spriteColor = color.RGBA{255, 255, 255, 255}

// Assets holds the icon bar stencil and one full-frame sprite per icon id, all sized to the panel.
type Assets struct {
	Mask    *image.Alpha
	sprites map[string]*image.RGBA
}

func (a *Assets) Sprite(iconId string) (*image.RGBA, bool) {
	sprite, ok := a.sprites[iconId]
	return sprite, ok
}

// SpriteFilename is the override file name of an icon id.
func SpriteFilename(iconId string) string {
	return "icon_" + iconId + ".png"
}

// Builtin renders the stencil and sprites without any file. Icons of one category share a slot
// in the bar, slots being ordered by category name.
func Builtin(width, height, barHeight int, iconIds []string) *Assets {
	assets := &Assets{
		Mask:    builtinMask(width, height, barHeight),
		sprites: make(map[string]*image.RGBA, len(iconIds)),
	}

	slots := categorySlots(iconIds)
	size := 12 * spriteScale
	for _, iconId := range iconIds {
		slot := slots[category(iconId)]
		origin := image.Pt(spriteMargin+slot*(size+spriteMargin), (barHeight-size)/2)
		assets.sprites[iconId] = builtinSprite(width, height, origin, iconArt[iconId])
	}
	return assets
}

// Load starts from the built-in assets and replaces every one found in dir.
func Load(dir string, width, height, barHeight int, iconIds []string) (*Assets, error) {
	assets := Builtin(width, height, barHeight, iconIds)
	if dir == "" {
		return assets, nil
	}

	mask, err := loadOverride(filepath.Join(dir, MaskFilename), width, height)
	if err != nil {
		return nil, err
	}
	if mask != nil {
		assets.Mask = ToAlpha(mask)
	}

	for _, iconId := range iconIds {
		sprite, err := loadOverride(filepath.Join(dir, SpriteFilename(iconId)), width, height)
		if err != nil {
			return nil, err
		}
		if sprite != nil {
			assets.sprites[iconId] = sprite
		}
	}
	return assets, nil
}

func loadOverride(path string, width, height int) (*image.RGBA, error) {
	img, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load asset: %w", err)
	}
	logrus.Debugf("Asset override: %s", path)
	return FitTo(img, width, height), nil
}

func builtinMask(width, height, barHeight int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r := float64(maskRadius)
	cy := float64(barHeight) - r
	for y := 0; y < barHeight && y < height; y++ {
		fy := float64(y) + 0.5
		for x := 0; x < width; x++ {
			fx := float64(x) + 0.5
			if fy > cy {
				var cx float64
				switch {
				case fx < r:
					cx = r
				case fx > float64(width)-r:
					cx = float64(width) - r
				default:
					mask.SetAlpha(x, y, color.Alpha{255})
					continue
				}
				if (fx-cx)*(fx-cx)+(fy-cy)*(fy-cy) > r*r {
					continue
				}
			}
			mask.SetAlpha(x, y, color.Alpha{255})
		}
	}
	return mask
}

func builtinSprite(width, height int, origin image.Point, art []string) *image.RGBA {
	sprite := image.NewRGBA(image.Rect(0, 0, width, height))
	if art == nil {
		// Unknown art: plain square
		square := image.Rect(0, 0, 12*spriteScale, 12*spriteScale).Add(origin)
		draw.Draw(sprite, square, image.NewUniform(spriteColor), image.Point{}, draw.Src)
		return sprite
	}
	for row, line := range art {
		for col, c := range line {
			if c != '#' {
				continue
			}
			pixel := image.Rect(col*spriteScale, row*spriteScale, (col+1)*spriteScale, (row+1)*spriteScale).Add(origin)
			draw.Draw(sprite, pixel, image.NewUniform(spriteColor), image.Point{}, draw.Src)
		}
	}
	return sprite
}

func categorySlots(iconIds []string) map[string]int {
	var categories []string
	seen := make(map[string]bool)
	for _, iconId := range iconIds {
		c := category(iconId)
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	slots := make(map[string]int, len(categories))
	for i, c := range categories {
		slots[c] = i
	}
	return slots
}

func category(iconId string) string {
	c, _, _ := strings.Cut(iconId, "_")
	return c
}
