package device

import (
	"fmt"
	"github.com/jypelle/piratedisplay/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

const (
	buttonCheckInterval = 5 * time.Millisecond
	buttonRepeatDelay   = 160 * time.Millisecond
)

type Button struct {
	pin            gpio.PinIn
	isPressed      bool
	pressStepCount int64
	lastChange     time.Time
}

// NewButton configures pin as an active low input.
func NewButton(pin gpio.PinIn) (*Button, error) {
	// Set it as input, with an internal pull up resistor:
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to setup %s button: %w", pin.Name(), err)
	}
	return &Button{pin: pin}, nil
}

// Refresh samples the pin and returns the event to send, if any. While held, a press event is
// repeated every buttonRepeatDelay with an increasing step count.
func (b *Button) Refresh(now time.Time) (event.ButtonEvent, bool) {
	wasPressed := b.isPressed
	b.isPressed = bool(!b.pin.Read())

	if !b.isPressed && wasPressed {
		b.lastChange = now
		ev := event.ButtonEvent{Name: b.pin.Name(), ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: b.pressStepCount}
		b.pressStepCount = 0
		return ev, true
	} else if b.isPressed && b.lastChange.Add(buttonRepeatDelay).Before(now) {
		b.lastChange = now
		b.pressStepCount++
		return event.ButtonEvent{Name: b.pin.Name(), ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: b.pressStepCount}, true
	}
	return event.ButtonEvent{}, false
}

// Buttons polls the panel buttons and reports presses on EventChannel.
type Buttons struct {
	eventChannel chan event.ButtonEvent

	buttons []*Button

	lock     sync.Mutex
	started  bool
	stopOnce sync.Once
	askDone  chan struct{}
	done     chan struct{}
}

// OpenButtons opens the GPIO pins named in pinNames.
func OpenButtons(pinNames []string) (*Buttons, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	pins := make([]gpio.PinIn, 0, len(pinNames))
	for _, name := range pinNames {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("failed to find %s button", name)
		}
		pins = append(pins, pin)
	}
	return NewButtons(pins)
}

func NewButtons(pins []gpio.PinIn) (*Buttons, error) {
	device := Buttons{
		eventChannel: make(chan event.ButtonEvent),
		askDone:      make(chan struct{}),
		done:         make(chan struct{}),
	}

	for _, pin := range pins {
		button, err := NewButton(pin)
		if err != nil {
			return nil, err
		}
		device.buttons = append(device.buttons, button)
	}
	return &device, nil
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()
	if d.started {
		return
	}
	d.started = true

	// Start periodic check
	checkTicker := time.NewTicker(buttonCheckInterval)
	go func() {
		defer close(d.done)
		defer checkTicker.Stop()
		for {
			select {
			case now := <-checkTicker.C:
				for _, button := range d.buttons {
					ev, ok := button.Refresh(now)
					if !ok {
						continue
					}
					select {
					case d.eventChannel <- ev:
					case <-d.askDone:
						return
					}
				}
			case <-d.askDone:
				return
			}
		}
	}()
}

// StopSendingEvent stops the polling goroutine. It returns at once if Start was never called.
func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	started := d.started
	d.lock.Unlock()

	d.stopOnce.Do(func() {
		close(d.askDone)
	})
	if started {
		<-d.done
	}
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
