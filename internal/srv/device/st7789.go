package device

import (
	"fmt"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/sirupsen/logrus"
	"image"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

// ST7789 commands
const (
	st7789SWRESET  = 0x01
	st7789SLPOUT   = 0x11
	st7789NORON    = 0x13
	st7789INVON    = 0x21
	st7789DISPON   = 0x29
	st7789DISPOFF  = 0x28
	st7789CASET    = 0x2A
	st7789RASET    = 0x2B
	st7789RAMWR    = 0x2C
	st7789MADCTL   = 0x36
	st7789COLMOD   = 0x3A
	st7789PORCTRL  = 0xB2
	st7789GCTRL    = 0xB7
	st7789VCOMS    = 0xBB
	st7789LCMCTRL  = 0xC0
	st7789VDVVRHEN = 0xC2
	st7789VRHS     = 0xC3
	st7789VDVS     = 0xC4
	st7789FRCTRL2  = 0xC6
	st7789PWCTRL1  = 0xD0
	st7789GMCTRP1  = 0xE0
	st7789GMCTRN1  = 0xE1
)

const defaultMaxTxSize = 4096

// ST7789 drives the 240×240 IPS panel of a Pirate Audio board over SPI, with the backlight on
// a GPIO.
type ST7789 struct {
	lock sync.Mutex

	port      spi.PortCloser
	spiConn   spi.Conn
	dc        gpio.PinOut
	reset     gpio.PinOut
	backlight gpio.PinOut
	maxTx     int

	width    int
	height   int
	rotation int
	buffer   []byte
	closed   bool
}

func NewST7789(param config.ST7789Param, width, height int) (*ST7789, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph host: %w", err)
	}

	d := &ST7789{
		width:    width,
		height:   height,
		rotation: param.Rotation,
		buffer:   make([]byte, width*height*2),
		maxTx:    defaultMaxTxSize,
	}

	var err error
	if d.dc, err = outputPin(param.DcPin, "dc"); err != nil {
		return nil, err
	}
	if d.backlight, err = outputPin(param.BacklightPin, "backlight"); err != nil {
		return nil, err
	}
	if param.ResetPin != "" {
		if d.reset, err = outputPin(param.ResetPin, "reset"); err != nil {
			return nil, err
		}
	}

	// Open a handle to the panel SPI port
	d.port, err = spireg.Open(param.SpiPort)
	if err != nil {
		return nil, fmt.Errorf("unable to open spi port %s: %w", param.SpiPort, err)
	}
	d.spiConn, err = d.port.Connect(physic.Frequency(param.SpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		d.port.Close()
		return nil, fmt.Errorf("unable to connect to spi port %s: %w", param.SpiPort, err)
	}
	if limits, ok := d.spiConn.(conn.Limits); ok && limits.MaxTxSize() > 0 {
		d.maxTx = limits.MaxTxSize()
	}

	if err = d.init(); err != nil {
		d.port.Close()
		return nil, fmt.Errorf("unable to initialize st7789: %w", err)
	}
	logrus.Infof("ST7789 ready on %s (%d Hz, rotation %d)", param.SpiPort, param.SpeedHz, param.Rotation)
	return d, nil
}

func outputPin(name string, role string) (gpio.PinOut, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unable to find %s pin %s", role, name)
	}
	return pin, nil
}

func (d *ST7789) init() error {
	if d.reset != nil {
		if err := d.reset.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
		if err := d.reset.Out(gpio.Low); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
		if err := d.reset.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}

	sequence := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{st7789SWRESET, nil, 150 * time.Millisecond},
		{st7789MADCTL, []byte{0x70}, 0},
		{st7789PORCTRL, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}, 0},
		{st7789COLMOD, []byte{0x05}, 0},
		{st7789GCTRL, []byte{0x14}, 0},
		{st7789VCOMS, []byte{0x37}, 0},
		{st7789LCMCTRL, []byte{0x2C}, 0},
		{st7789VDVVRHEN, []byte{0x01}, 0},
		{st7789VRHS, []byte{0x12}, 0},
		{st7789VDVS, []byte{0x20}, 0},
		{st7789PWCTRL1, []byte{0xA4, 0xA1}, 0},
		{st7789FRCTRL2, []byte{0x0F}, 0},
		{st7789GMCTRP1, []byte{0xD0, 0x04, 0x0D, 0x11, 0x13, 0x2B, 0x3F, 0x54, 0x4C, 0x18, 0x0D, 0x0B, 0x1F, 0x23}, 0},
		{st7789GMCTRN1, []byte{0xD0, 0x04, 0x0C, 0x11, 0x13, 0x2C, 0x3F, 0x44, 0x51, 0x2F, 0x1F, 0x1F, 0x20, 0x23}, 0},
		{st7789INVON, nil, 0},
		{st7789SLPOUT, nil, 0},
		{st7789NORON, nil, 0},
		{st7789DISPON, nil, 100 * time.Millisecond},
	}
	for _, step := range sequence {
		if err := d.command(step.cmd, step.data...); err != nil {
			return err
		}
		time.Sleep(step.delay)
	}
	return nil
}

func (d *ST7789) Display(frame *image.RGBA) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}

	toRGB565(d.buffer, frame, d.rotation)

	if err := d.command(st7789CASET, 0, 0, byte((d.width-1)>>8), byte(d.width-1)); err != nil {
		return err
	}
	if err := d.command(st7789RASET, 0, 0, byte((d.height-1)>>8), byte(d.height-1)); err != nil {
		return err
	}
	if err := d.command(st7789RAMWR); err != nil {
		return err
	}
	return d.data(d.buffer)
}

func (d *ST7789) SetBacklight(enabled bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.backlight.Out(gpio.Level(enabled))
}

func (d *ST7789) Stopped() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.closed
}

func (d *ST7789) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.command(st7789DISPOFF); err != nil {
		logrus.Warnf("Unable to switch st7789 off: %v", err)
	}
	if err := d.backlight.Out(gpio.Low); err != nil {
		logrus.Warnf("Unable to switch backlight off: %v", err)
	}
	return d.port.Close()
}

func (d *ST7789) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.spiConn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *ST7789) data(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		chunk := data
		if len(chunk) > d.maxTx {
			chunk = chunk[:d.maxTx]
		}
		if err := d.spiConn.Tx(chunk, nil); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// toRGB565 writes frame as big endian RGB565 into dst, rotated clockwise by rotation degrees.
// The frame is expected square when rotated by 90 or 270.
func toRGB565(dst []byte, frame *image.RGBA, rotation int) {
	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sx, sy int
			switch rotation {
			case 90:
				sx, sy = y, h-1-x
			case 180:
				sx, sy = w-1-x, h-1-y
			case 270:
				sx, sy = w-1-y, x
			default:
				sx, sy = x, y
			}
			// Premultiplied components: transparent pixels render as black
			c := frame.RGBAAt(bounds.Min.X+sx, bounds.Min.Y+sy)
			v := uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
			dst[i] = byte(v >> 8)
			dst[i+1] = byte(v)
			i += 2
		}
	}
}
