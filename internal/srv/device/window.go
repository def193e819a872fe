//go:build !arm && !arm64
// +build !arm,!arm64

package device

import (
	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"
	"image"
	"image/color"
	"sync"
)

// Window simulates the panel in a desktop window. It is stopped once the window is closed.
type Window struct {
	lock    sync.RWMutex
	on      bool
	stopped bool
	lastImg *image.RGBA

	simulationWindow *app.Window
}

func NewWindow(width, height int) (*Window, error) {
	d := &Window{on: true}
	d.simulationWindow = app.NewWindow(
		app.Title("piratedisplay simulator"),
		app.Size(unit.Px(float32(2*width)), unit.Px(float32(2*height))),
		app.MinSize(unit.Px(float32(width)), unit.Px(float32(height))),
	)
	go func() {
		if err := d.gioloop(); err != nil {
			logrus.Errorf("Simulation window failure: %v", err)
		}
		d.lock.Lock()
		d.stopped = true
		d.lock.Unlock()
		logrus.Infof("Simulation window closed")
	}()
	go app.Main()
	return d, nil
}

func (d *Window) Display(frame *image.RGBA) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.stopped {
		return ErrClosed
	}
	d.lastImg = frame
	d.simulationWindow.Invalidate()
	return nil
}

func (d *Window) SetBacklight(enabled bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.stopped {
		return ErrClosed
	}
	d.on = enabled
	d.simulationWindow.Invalidate()
	return nil
}

func (d *Window) Stopped() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.stopped
}

func (d *Window) Close() error {
	if !d.Stopped() {
		d.simulationWindow.Close()
	}
	return nil
}

func (d *Window) gioloop() error {
	var ops op.Ops
	for {
		e := <-d.simulationWindow.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			d.lock.RLock()
			lastImg := d.lastImg
			on := d.on
			d.lock.RUnlock()

			// A switched off backlight shows a black panel
			paint.Fill(gtx.Ops, color.NRGBA{A: 255})
			if on && lastImg != nil {
				img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
				img.Layout(gtx)
			}
			e.Frame(gtx.Ops)
		}
	}
}
