package device

import (
	"fmt"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"image"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
	"sync"
)

// SSD1306 shows a downscaled monochrome preview of the frames on a 128×64 I²C OLED. Switching the
// backlight off halts the display.
type SSD1306 struct {
	oledLock    sync.Mutex
	oledDisplay *ssd1306.Dev
	i2cBus      i2c.BusCloser

	lock    sync.RWMutex
	on      bool
	closed  bool
	lastImg *image.RGBA
}

func NewSSD1306(param config.SSD1306Param) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph host: %w", err)
	}

	d := &SSD1306{on: true}

	var err error
	// Open a handle to the configured (or first available) I²C bus:
	d.i2cBus, err = i2creg.Open(param.I2cBus)
	if err != nil {
		return nil, fmt.Errorf("unable to open i2c bus: %w", err)
	}

	// Open a handle to a ssd1306 connected on the I²C bus:
	d.oledDisplay, err = ssd1306.NewI2C(d.i2cBus, &ssd1306.DefaultOpts)
	if err != nil {
		d.i2cBus.Close()
		return nil, fmt.Errorf("unable to initialize oled display: %w", err)
	}
	d.oledDisplay.SetContrast(1)

	logrus.Infof("SSD1306 ready")
	return d, nil
}

func (d *SSD1306) Display(frame *image.RGBA) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.lastImg = d.preview(frame)
	if !d.on {
		return nil
	}
	return d.draw(d.lastImg)
}

func (d *SSD1306) SetBacklight(enabled bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.on = enabled

	d.oledLock.Lock()
	defer d.oledLock.Unlock()
	if !enabled {
		return d.oledDisplay.Halt()
	}
	// Hack to force display on (calling Draw() is not enough)
	if err := d.oledDisplay.SetContrast(1); err != nil {
		return err
	}
	if d.lastImg != nil {
		return d.oledDisplay.Draw(d.oledDisplay.Bounds(), d.lastImg, image.Point{})
	}
	return nil
}

func (d *SSD1306) Stopped() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.closed
}

func (d *SSD1306) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	d.oledLock.Lock()
	defer d.oledLock.Unlock()
	if err := d.oledDisplay.Halt(); err != nil {
		logrus.Warnf("Unable to halt oled display: %v", err)
	}
	return d.i2cBus.Close()
}

func (d *SSD1306) draw(img image.Image) error {
	d.oledLock.Lock()
	defer d.oledLock.Unlock()
	return d.oledDisplay.Draw(d.oledDisplay.Bounds(), img, image.Point{})
}

// preview fits the frame, keeping its aspect ratio, in the middle of the oled.
func (d *SSD1306) preview(frame *image.RGBA) *image.RGBA {
	bounds := d.oledDisplay.Bounds()
	img := image.NewRGBA(bounds)
	side := bounds.Dy()
	if bounds.Dx() < side {
		side = bounds.Dx()
	}
	offset := image.Pt((bounds.Dx()-side)/2, (bounds.Dy()-side)/2)
	xdraw.ApproxBiLinear.Scale(img, image.Rect(0, 0, side, side).Add(offset), frame, frame.Bounds(), xdraw.Src, nil)
	return img
}
