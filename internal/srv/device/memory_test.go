package device

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	d := NewMemory()
	assert.Nil(t, d.LastFrame())
	assert.False(t, d.Backlight())

	frame := image.NewRGBA(image.Rect(0, 0, 240, 240))
	require.NoError(t, d.Display(frame))
	require.NoError(t, d.SetBacklight(true))
	require.NoError(t, d.SetBacklight(false))

	assert.Same(t, frame, d.LastFrame())
	assert.Equal(t, 1, d.FrameCount())
	assert.Equal(t, []bool{true, false}, d.Backlights())

	fault := errors.New("spi fault")
	d.Fail(fault)
	assert.ErrorIs(t, d.Display(frame), fault)
	assert.ErrorIs(t, d.SetBacklight(true), fault)

	require.NoError(t, d.Close())
	assert.True(t, d.Stopped())
}

func TestMemory_Bounded(t *testing.T) {
	d := NewMemory()

	var last *image.RGBA
	for i := 0; i < 1000; i++ {
		last = image.NewRGBA(image.Rect(0, 0, 240, 240))
		require.NoError(t, d.Display(last))
		require.NoError(t, d.SetBacklight(i%2 == 0))
	}

	assert.Equal(t, 1000, d.FrameCount())
	assert.Same(t, last, d.LastFrame())
	backlights := d.Backlights()
	assert.Len(t, backlights, memoryBacklightHistory)
	assert.False(t, backlights[len(backlights)-1])
}
