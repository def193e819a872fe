package device

import (
	"errors"
	"image"
	"sync"
)

var ErrClosed = errors.New("display closed")

const memoryBacklightHistory = 32

// Memory keeps the last frame and the latest backlight changes in memory.
type Memory struct {
	lock       sync.RWMutex
	lastFrame  *image.RGBA
	frameCount int
	backlights []bool
	stopped    bool
	failure    error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (d *Memory) Display(frame *image.RGBA) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.failure != nil {
		return d.failure
	}
	if d.stopped {
		return ErrClosed
	}
	d.lastFrame = frame
	d.frameCount++
	return nil
}

func (d *Memory) SetBacklight(enabled bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.failure != nil {
		return d.failure
	}
	d.backlights = append(d.backlights, enabled)
	if len(d.backlights) > memoryBacklightHistory {
		d.backlights = append([]bool(nil), d.backlights[len(d.backlights)-memoryBacklightHistory:]...)
	}
	return nil
}

func (d *Memory) Stopped() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.stopped
}

func (d *Memory) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.stopped = true
	return nil
}

// Fail makes every following call return err, like a hardware fault.
func (d *Memory) Fail(err error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.failure = err
}

func (d *Memory) FrameCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.frameCount
}

// LastFrame returns nil when nothing has been displayed.
func (d *Memory) LastFrame() *image.RGBA {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.lastFrame
}

// Backlights returns the last backlight changes, oldest first.
func (d *Memory) Backlights() []bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]bool(nil), d.backlights...)
}

func (d *Memory) Backlight() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.backlights) > 0 && d.backlights[len(d.backlights)-1]
}
