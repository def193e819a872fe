package command

import (
	"github.com/jypelle/piratedisplay/apimodel"
	"path/filepath"
)

// Target is the display side of the commands.
type Target interface {
	DrawIcon(iconId string) error
	ClearIcon(iconId string) error
	DrawImage(path string) error
	SetIconBarColor(r, g, b, a int) error
	WakeBacklight() error
}

// Command is one decoded request.
type Command interface {
	Name() string
	apply(d *Dispatcher) error
}

type DrawIcon struct {
	Icon string
}

func (c DrawIcon) Name() string { return apimodel.CommandDrawIcon }

func (c DrawIcon) apply(d *Dispatcher) error {
	return d.target.DrawIcon(c.Icon)
}

type ClearIcon struct {
	Icon string
}

func (c ClearIcon) Name() string { return apimodel.CommandClearIcon }

func (c ClearIcon) apply(d *Dispatcher) error {
	return d.target.ClearIcon(c.Icon)
}

type DrawImage struct {
	RelativePath string
}

func (c DrawImage) Name() string { return apimodel.CommandDrawImage }

func (c DrawImage) apply(d *Dispatcher) error {
	return d.target.DrawImage(d.resolve(c.RelativePath))
}

// SetIconBarColor channels are not range checked.
type SetIconBarColor struct {
	R, G, B, A int
}

func (c SetIconBarColor) Name() string { return apimodel.CommandIconBarColor }

func (c SetIconBarColor) apply(d *Dispatcher) error {
	return d.target.SetIconBarColor(c.R, c.G, c.B, c.A)
}

type WakeBacklight struct{}

func (c WakeBacklight) Name() string { return apimodel.CommandBacklight }

func (c WakeBacklight) apply(d *Dispatcher) error {
	return d.target.WakeBacklight()
}

// Dispatcher applies commands to a Target.
type Dispatcher struct {
	target    Target
	imageRoot string
}

// NewDispatcher resolves relative image paths from imageRoot, which should be absolute.
func NewDispatcher(target Target, imageRoot string) *Dispatcher {
	return &Dispatcher{target: target, imageRoot: imageRoot}
}

// Dispatch runs cmd and converts its outcome into a response. Errors are returned too so that
// the caller can log them and detect fatal ones.
func (d *Dispatcher) Dispatch(cmd Command) (apimodel.Response, error) {
	if err := cmd.apply(d); err != nil {
		return apimodel.ExceptionResponse(err), err
	}
	return apimodel.OkResponse(), nil
}

// Handle decodes and dispatches one raw request.
func (d *Dispatcher) Handle(raw []byte) (Command, apimodel.Response, error) {
	cmd, err := Decode(raw)
	if err != nil {
		return nil, apimodel.ExceptionResponse(err), err
	}
	response, err := d.Dispatch(cmd)
	return cmd, response, err
}

func (d *Dispatcher) resolve(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return filepath.Clean(relativePath)
	}
	return filepath.Join(d.imageRoot, relativePath)
}
