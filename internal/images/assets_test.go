package images

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIconIds = []string{"alarm_check", "alarm_off", "wifi_connected", "wifi_wait"}

func TestBuiltinMask(t *testing.T) {
	assets := Builtin(240, 240, 48, testIconIds)

	assert.Equal(t, image.Rect(0, 0, 240, 240), assets.Mask.Bounds())
	assert.Equal(t, uint8(255), assets.Mask.AlphaAt(120, 0).A)
	assert.Equal(t, uint8(255), assets.Mask.AlphaAt(120, 47).A)
	assert.Equal(t, uint8(0), assets.Mask.AlphaAt(120, 48).A)
	assert.Equal(t, uint8(0), assets.Mask.AlphaAt(0, 47).A, "rounded corner")
	assert.Equal(t, uint8(0), assets.Mask.AlphaAt(239, 47).A, "rounded corner")
	assert.Equal(t, uint8(255), assets.Mask.AlphaAt(0, 0).A)
}

func TestBuiltinSpritesStayInsideTheBar(t *testing.T) {
	assets := Builtin(240, 240, 48, testIconIds)

	for _, iconId := range testIconIds {
		sprite, ok := assets.Sprite(iconId)
		require.True(t, ok, iconId)

		opaque := 0
		for y := 0; y < 240; y++ {
			for x := 0; x < 240; x++ {
				if sprite.RGBAAt(x, y).A == 0 {
					continue
				}
				opaque++
				assert.Less(t, y, 48, iconId)
			}
		}
		assert.Greater(t, opaque, 0, iconId)
	}
}

func TestBuiltinSlotsByCategory(t *testing.T) {
	assets := Builtin(240, 240, 48, testIconIds)

	alarm, _ := assets.Sprite("alarm_plus")
	assert.Nil(t, alarm, "not requested")

	check, _ := assets.Sprite("alarm_check")
	off, _ := assets.Sprite("alarm_off")
	wifi, _ := assets.Sprite("wifi_connected")
	assert.Equal(t, opaqueBounds(check).Min.X/42, opaqueBounds(off).Min.X/42)
	assert.Less(t, opaqueBounds(check).Max.X, opaqueBounds(wifi).Min.X)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()

	// Half-size mask covering the top row only, scaled up on load
	mask := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	for x := 0; x < 120; x++ {
		mask.SetNRGBA(x, 0, color.NRGBA{A: 255})
	}
	writePng(t, filepath.Join(dir, MaskFilename), mask)

	sprite := image.NewNRGBA(image.Rect(0, 0, 240, 240))
	sprite.SetNRGBA(200, 10, color.NRGBA{R: 255, A: 255})
	writePng(t, filepath.Join(dir, SpriteFilename("wifi_wait")), sprite)

	assets, err := Load(dir, 240, 240, 48, testIconIds)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), assets.Mask.AlphaAt(120, 40).A)
	assert.NotZero(t, assets.Mask.AlphaAt(120, 0).A)

	wait, _ := assets.Sprite("wifi_wait")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, wait.RGBAAt(200, 10))

	builtin := Builtin(240, 240, 48, testIconIds)
	expected, _ := builtin.Sprite("wifi_connected")
	connected, _ := assets.Sprite("wifi_connected")
	assert.Equal(t, expected.Pix, connected.Pix)
}

func TestLoad_BadAsset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MaskFilename), []byte("not a png"), 0600))

	_, err := Load(dir, 240, 240, 48, testIconIds)
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestFitTo(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 60, 30))
	for i := range src.Pix {
		src.Pix[i] = 255
	}

	fit := FitTo(src, 240, 240)

	assert.Equal(t, image.Rect(0, 0, 240, 240), fit.Bounds())
	for _, p := range []image.Point{{0, 0}, {120, 120}, {239, 239}} {
		c := fit.RGBAAt(p.X, p.Y)
		assert.GreaterOrEqual(t, c.R, uint8(250), p)
		assert.GreaterOrEqual(t, c.A, uint8(250), p)
	}
}

func opaqueBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func writePng(t *testing.T, path string, img image.Image) {
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}
