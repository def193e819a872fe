package device

import (
	"github.com/sirupsen/logrus"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// File is a headless simulator: every frame is written to a PNG file, a black frame while the
// backlight is off.
type File struct {
	lock      sync.Mutex
	path      string
	lastFrame *image.RGBA
	on        bool
	closed    bool
}

func NewFile(path string) *File {
	logrus.Infof("Frames written to %s", path)
	return &File{path: path, on: true}
}

func (d *File) Display(frame *image.RGBA) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.lastFrame = frame
	return d.write()
}

func (d *File) SetBacklight(enabled bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.on = enabled
	if d.lastFrame == nil || d.closed {
		return nil
	}
	return d.write()
}

func (d *File) Stopped() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.closed
}

func (d *File) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closed = true
	return nil
}

func (d *File) write() error {
	img := d.lastFrame
	if !d.on {
		img = image.NewRGBA(d.lastFrame.Bounds())
		draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	}

	// Write then rename so that a viewer never reads a partial file
	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".frame-*.png")
	if err != nil {
		return err
	}
	if err = png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), d.path)
}
