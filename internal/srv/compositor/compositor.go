package compositor

import (
	"errors"
	"github.com/jypelle/piratedisplay/apimodel"
	"github.com/jypelle/piratedisplay/internal/images"
	"github.com/sirupsen/logrus"
	"image"
	"image/draw"
	"io/fs"
	"sort"
)

// Geometry of the panel. IconBarHeight is only used to build the stencil.
type Geometry struct {
	Width         int
	Height        int
	IconBarHeight int
}

var PirateAudio = Geometry{Width: 240, Height: 240, IconBarHeight: 48}

// Screen receives composited frames.
type Screen interface {
	Display(frame *image.RGBA) error
	Stopped() bool
}

// ActivitySignal is raised after every frame pushed to the screen.
type ActivitySignal interface {
	Activity() error
}

// Compositor owns the background and icon bar layers. It is not safe for concurrent use: all
// calls are expected from the request loop.
type Compositor struct {
	geometry Geometry
	screen   Screen
	activity ActivitySignal
	assets   *images.Assets

	background *image.RGBA
	iconBar    *image.RGBA
	lastFrame  *image.RGBA

	activeIcons  map[string]string
	iconBarColor Color
}

func NewCompositor(geometry Geometry, screen Screen, activity ActivitySignal, assets *images.Assets, iconBarColor Color) *Compositor {
	bounds := image.Rect(0, 0, geometry.Width, geometry.Height)
	c := &Compositor{
		geometry:     geometry,
		screen:       screen,
		activity:     activity,
		assets:       assets,
		background:   image.NewRGBA(bounds),
		iconBar:      image.NewRGBA(bounds),
		lastFrame:    image.NewRGBA(bounds),
		activeIcons:  make(map[string]string),
		iconBarColor: iconBarColor,
	}
	draw.Draw(c.background, bounds, image.Black, image.Point{}, draw.Src)
	return c
}

// Init pushes a first frame made of img (nil: black) and the empty icon bar, without raising
// activity so that the panel stays dark.
func (c *Compositor) Init(img image.Image) error {
	if img != nil {
		c.background = images.FitTo(img, c.geometry.Width, c.geometry.Height)
	}
	c.buildIconBar()
	return c.push()
}

func (c *Compositor) Stopped() bool {
	return c.screen.Stopped()
}

// DrawImage replaces the background with the image file at path.
func (c *Compositor) DrawImage(path string) error {
	logrus.Debugf("Compositor.DrawImage(%s)", path)
	img, err := images.LoadFile(path)
	if err != nil {
		var decodeErr *images.DecodeError
		if errors.As(err, &decodeErr) {
			return apimodel.WrapException(apimodel.ImageDecodeError, decodeErr.Err, "%s is not a valid image", path)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return apimodel.NewException(apimodel.ImageNotFound, "image not found: %s", path)
		}
		return apimodel.WrapException(apimodel.ImageNotFound, err, "unable to open image %s", path)
	}
	if img.Bounds().Dx() != c.geometry.Width || img.Bounds().Dy() != c.geometry.Height {
		logrus.Debugf("Image resized from (%d,%d) to (%d,%d)", img.Bounds().Dx(), img.Bounds().Dy(), c.geometry.Width, c.geometry.Height)
	}
	c.background = images.FitTo(img, c.geometry.Width, c.geometry.Height)
	return c.recomposite()
}

// DrawIcon activates iconId, replacing the active symbol of its category.
func (c *Compositor) DrawIcon(iconId string) error {
	category, symbol, err := ParseIcon(iconId)
	if err != nil {
		return err
	}
	c.activeIcons[category] = symbol
	return c.rebuildIconBar()
}

// ClearIcon removes the category of iconId from the bar. Clearing an inactive category is not
// an error.
func (c *Compositor) ClearIcon(iconId string) error {
	category, _, err := ParseIcon(iconId)
	if err != nil {
		return err
	}
	delete(c.activeIcons, category)
	return c.rebuildIconBar()
}

func (c *Compositor) SetIconBarColor(r, g, b, a int) error {
	c.iconBarColor = Color{R: r, G: g, B: b, A: a}
	return c.rebuildIconBar()
}

// WakeBacklight raises activity without changing the frame.
func (c *Compositor) WakeBacklight() error {
	return c.raiseActivity()
}

func (c *Compositor) ActiveIcons() map[string]string {
	activeIcons := make(map[string]string, len(c.activeIcons))
	for category, symbol := range c.activeIcons {
		activeIcons[category] = symbol
	}
	return activeIcons
}

func (c *Compositor) IconBarColor() Color {
	return c.iconBarColor
}

// Frame returns the last frame pushed to the screen.
func (c *Compositor) Frame() *image.RGBA {
	return c.lastFrame
}

func (c *Compositor) Background() *image.RGBA {
	return c.background
}

func (c *Compositor) rebuildIconBar() error {
	c.buildIconBar()
	return c.recomposite()
}

func (c *Compositor) buildIconBar() {
	bounds := c.iconBar.Bounds()
	iconBar := image.NewRGBA(bounds)
	draw.DrawMask(iconBar, bounds, image.NewUniform(c.iconBarColor.NRGBA()), image.Point{}, c.assets.Mask, image.Point{}, draw.Over)

	categories := make([]string, 0, len(c.activeIcons))
	for category := range c.activeIcons {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		iconId := category + "_" + c.activeIcons[category]
		sprite, ok := c.assets.Sprite(iconId)
		if !ok {
			logrus.Warnf("No sprite for icon %s", iconId)
			continue
		}
		draw.Draw(iconBar, bounds, sprite, image.Point{}, draw.Over)
	}
	c.iconBar = iconBar
}

func (c *Compositor) recomposite() error {
	if err := c.push(); err != nil {
		return err
	}
	return c.raiseActivity()
}

func (c *Compositor) push() error {
	frame := image.NewRGBA(c.background.Bounds())
	draw.Draw(frame, frame.Bounds(), c.background, image.Point{}, draw.Src)
	draw.Draw(frame, frame.Bounds(), c.iconBar, image.Point{}, draw.Over)

	if err := c.screen.Display(frame); err != nil {
		return apimodel.WrapException(apimodel.BackendError, err, "unable to display frame")
	}
	c.lastFrame = frame
	return nil
}

func (c *Compositor) raiseActivity() error {
	if err := c.activity.Activity(); err != nil {
		return apimodel.WrapException(apimodel.BackendError, err, "unable to switch backlight on")
	}
	return nil
}
