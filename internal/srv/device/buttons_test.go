package device

import (
	"testing"
	"time"

	"github.com/jypelle/piratedisplay/internal/srv/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestButton_Refresh(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO5", L: gpio.High}
	button, err := NewButton(pin)
	require.NoError(t, err)
	assert.Equal(t, gpio.PullUp, pin.P)

	now := time.Now()
	require.NoError(t, pin.Out(gpio.High))
	_, ok := button.Refresh(now)
	assert.False(t, ok)

	// pressed, active low
	require.NoError(t, pin.Out(gpio.Low))
	ev, ok := button.Refresh(now)
	require.True(t, ok)
	assert.Equal(t, event.ButtonEvent{Name: "GPIO5", ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 1}, ev)

	// held: no repeat before the delay
	_, ok = button.Refresh(now.Add(buttonRepeatDelay / 2))
	assert.False(t, ok)
	ev, ok = button.Refresh(now.Add(2 * buttonRepeatDelay))
	require.True(t, ok)
	assert.Equal(t, int64(2), ev.PressStepCount)

	require.NoError(t, pin.Out(gpio.High))
	ev, ok = button.Refresh(now.Add(3 * buttonRepeatDelay))
	require.True(t, ok)
	assert.Equal(t, event.ButtonEvent{Name: "GPIO5", ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: 2}, ev)
}

func TestButtons_EventChannel(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO16", L: gpio.High}
	buttons, err := NewButtons([]gpio.PinIn{pin})
	require.NoError(t, err)
	buttons.Start()
	defer buttons.StopSendingEvent()

	require.NoError(t, pin.Out(gpio.Low))

	select {
	case ev := <-buttons.EventChannel():
		assert.Equal(t, "GPIO16", ev.Name)
		assert.Equal(t, event.PRESS_EVENT_TYPE, ev.ButtonEventType)
	case <-time.After(2 * time.Second):
		t.Fatal("no button event")
	}
}

func TestButtons_StopWithoutStart(t *testing.T) {
	buttons, err := NewButtons([]gpio.PinIn{&gpiotest.Pin{N: "GPIO6", L: gpio.High}})
	require.NoError(t, err)

	stopped := make(chan struct{})
	go func() {
		buttons.StopSendingEvent()
		buttons.StopSendingEvent()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("StopSendingEvent blocked")
	}
}
