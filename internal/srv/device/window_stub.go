//go:build arm || arm64
// +build arm arm64

package device

import (
	"errors"
	"image"
)

// Window is not available on the boards, which have no desktop.
type Window struct{}

func NewWindow(width, height int) (*Window, error) {
	return nil, errors.New("simulation window is not available on this architecture")
}

func (d *Window) Display(frame *image.RGBA) error { return ErrClosed }

func (d *Window) SetBacklight(enabled bool) error { return ErrClosed }

func (d *Window) Stopped() bool { return true }

func (d *Window) Close() error { return nil }
