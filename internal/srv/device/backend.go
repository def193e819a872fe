package device

import (
	"fmt"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"image"
)

// Backend paints composited frames and powers the backlight of a panel.
type Backend interface {
	Display(frame *image.RGBA) error
	SetBacklight(enabled bool) error
	// Stopped reports that the backend can no longer accept frames.
	Stopped() bool
	Close() error
}

// NewBackend opens the backend selected by the configuration.
func NewBackend(serverConfig *config.ServerConfig, width, height int) (Backend, error) {
	switch serverConfig.Backend {
	case config.BackendST7789:
		d, err := NewST7789(serverConfig.ST7789, width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendSSD1306:
		d, err := NewSSD1306(serverConfig.SSD1306)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendWindow:
		d, err := NewWindow(width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.BackendFile:
		return NewFile(serverConfig.GetCompleteFramePath()), nil
	case config.BackendNone:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", serverConfig.Backend)
	}
}
