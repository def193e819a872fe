package srv

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jypelle/piratedisplay/apimodel"
	"github.com/jypelle/piratedisplay/internal/srv/command"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/jypelle/piratedisplay/internal/srv/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type testServer struct {
	app     *ServerApp
	display *device.Memory
	http    *httptest.Server
	images  string
}

func newTestServer(t *testing.T, mutate func(param *config.ServerParam)) *testServer {
	return newTestServerWithButtons(t, mutate, nil)
}

func newTestServerWithButtons(t *testing.T, mutate func(param *config.ServerParam), pins []gpio.PinIn) *testServer {
	return newTestServerWith(t, mutate, pins, nil)
}

func newTestServerWith(t *testing.T, mutate func(param *config.ServerParam), pins []gpio.PinIn, target command.Target) *testServer {
	t.Helper()

	imageRoot := t.TempDir()
	param := config.DefaultServerParam()
	param.Backend = config.BackendNone
	param.Splash = false
	param.ImageRoot = imageRoot
	param.PollInterval = config.Duration(10 * time.Millisecond)
	param.Backlight.CheckInterval = config.Duration(5 * time.Millisecond)
	param.Buttons = nil
	if mutate != nil {
		mutate(param)
	}
	serverConfig := &config.ServerConfig{ConfigDir: t.TempDir(), ServerParam: param}

	display := device.NewMemory()
	app, err := NewServerApp(serverConfig, display)
	require.NoError(t, err)
	if pins != nil {
		app.buttonsDevice, err = device.NewButtons(pins)
		require.NoError(t, err)
	}
	if target != nil {
		app.dispatcher = command.NewDispatcher(target, imageRoot)
	}
	require.NoError(t, app.startCore())
	t.Cleanup(app.Stop)

	ts := httptest.NewServer(app.apiDevice.Handler())
	t.Cleanup(ts.Close)

	return &testServer{app: app, display: display, http: ts, images: imageRoot}
}

func (ts *testServer) post(t *testing.T, body string) (int, apimodel.Response) {
	t.Helper()
	resp, err := http.Post(ts.http.URL+"/api/command", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var response apimodel.Response
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	}
	return resp.StatusCode, response
}

func (ts *testServer) command(t *testing.T, body string) apimodel.Response {
	t.Helper()
	status, response := ts.post(t, body)
	require.Equal(t, http.StatusOK, status)
	return response
}

func (ts *testServer) status(t *testing.T) apimodel.Status {
	t.Helper()
	resp, err := http.Get(ts.http.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status apimodel.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	return status
}

func exception(name, text string) apimodel.Response {
	return apimodel.Response{Response: apimodel.ResponseException, Name: name, Text: text}
}

func TestServer_StartsDark(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, 1, ts.display.FrameCount())
	assert.Equal(t, []bool{false}, ts.display.Backlights())
	assert.False(t, ts.status(t).Backlight)
}

func TestServer_Splash(t *testing.T) {
	ts := newTestServer(t, func(param *config.ServerParam) {
		param.Splash = true
	})

	frame := ts.display.LastFrame()
	require.NotNil(t, frame)
	var lit int
	for i := 0; i < len(frame.Pix); i += 4 {
		if frame.Pix[i] == 255 && frame.Pix[i+1] == 255 && frame.Pix[i+2] == 255 {
			lit++
		}
	}
	assert.Greater(t, lit, 0)
	assert.False(t, ts.display.Backlight())
}

func TestServer_DrawIcon(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"draw_icon","icon":"wifi_connected"}`))

	assert.Equal(t, 2, ts.display.FrameCount())
	assert.True(t, ts.display.Backlight())

	status := ts.status(t)
	assert.True(t, status.Backlight)
	assert.Equal(t, map[string]string{"wifi": "connected"}, status.ActiveIcons)
}

func TestServer_Exceptions(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		body     string
		expected apimodel.Response
	}{
		{`{"command":"draw_icon","icon":"wifi_bogus"}`, exception("UnknownSymbol", `unknown symbol "bogus" for icon category "wifi"`)},
		{`{"command":"icon_bar_color","r":"red","g":0,"b":0,"a":0}`, exception("TypeMismatch", `icon_bar_color["r"] must be "integer" not "string"`)},
		{`{"command":"draw_icon_bar"}`, exception("UnknownCommand", `unknown command "draw_icon_bar"`)},
		{`{"icon":"wifi_wait"}`, exception("MissingCommand", "message does not contain a command")},
		{`{"command":"draw_image"}`, exception("MissingField", `"draw_image" does not contain required field: "relative_path"`)},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.expected, ts.command(t, tt.body))
		})
	}

	_, response := ts.post(t, `{"command":"draw_image","relative_path":"nope.png"}`)
	assert.Equal(t, "ImageNotFound", response.Name)
	assert.Contains(t, response.Text, filepath.Join(ts.images, "nope.png"))

	_, response = ts.post(t, `not json`)
	assert.Equal(t, "MalformedRequest", response.Name)

	// Nothing reached the display
	assert.Equal(t, 1, ts.display.FrameCount())
	assert.Equal(t, []bool{false}, ts.display.Backlights())
	assert.Empty(t, ts.status(t).ActiveIcons)
}

func TestServer_DrawImage(t *testing.T) {
	ts := newTestServer(t, nil)
	img := image.NewRGBA(image.Rect(0, 0, 240, 240))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	require.NoError(t, os.MkdirAll(filepath.Join(ts.images, "screens"), 0700))
	f, err := os.Create(filepath.Join(ts.images, "screens", "white.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"draw_image","relative_path":"screens/white.png"}`))

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, ts.display.LastFrame().RGBAAt(120, 200))
}

func TestServer_IconBarColor(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"icon_bar_color","r":300,"g":-10,"b":0,"a":255}`))

	assert.Equal(t, [4]int{300, -10, 0, 255}, ts.status(t).IconBarColor)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, ts.display.LastFrame().RGBAAt(200, 10))
}

func TestServer_BacklightCommand(t *testing.T) {
	ts := newTestServer(t, nil)

	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"backlight"}`))

	assert.Equal(t, 1, ts.display.FrameCount())
	assert.Equal(t, []bool{false, true}, ts.display.Backlights())
}

func TestServer_BacklightTimeout(t *testing.T) {
	ts := newTestServer(t, func(param *config.ServerParam) {
		param.Backlight.Timeout = config.Duration(50 * time.Millisecond)
	})

	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"draw_icon","icon":"alarm_check"}`))
	assert.True(t, ts.display.Backlight())

	assert.Eventually(t, func() bool {
		return !ts.display.Backlight()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false, true, false}, ts.display.Backlights())

	// next command lights the panel again
	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"clear_icon","icon":"alarm_check"}`))
	assert.True(t, ts.display.Backlight())
}

func TestServer_BackendFailureStopsLoop(t *testing.T) {
	ts := newTestServer(t, nil)
	failure := errors.New("spi: transfer failed")
	ts.display.Fail(failure)

	response := ts.command(t, `{"command":"draw_icon","icon":"wifi_wait"}`)
	assert.Equal(t, "BackendError", response.Name)

	select {
	case <-ts.app.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request loop still running")
	}
	assert.True(t, apimodel.IsFatal(ts.app.Err()))
	assert.ErrorIs(t, ts.app.Err(), failure)

	status, _ := ts.post(t, `{"command":"backlight"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_DisplayStopped(t *testing.T) {
	ts := newTestServer(t, nil)

	require.NoError(t, ts.display.Close())

	select {
	case <-ts.app.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request loop still running")
	}
	assert.NoError(t, ts.app.Err())
}

func TestServer_Stop(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.app.Stop()

	_, open := <-ts.app.Done()
	assert.False(t, open)
	assert.NoError(t, ts.app.Err())
	assert.True(t, ts.display.Stopped())

	status, _ := ts.post(t, `{"command":"backlight"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_ButtonWakesBacklight(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO5", L: gpio.High}
	ts := newTestServerWithButtons(t, nil, []gpio.PinIn{pin})
	assert.False(t, ts.display.Backlight())

	require.NoError(t, pin.Out(gpio.Low))

	assert.Eventually(t, ts.display.Backlight, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, ts.display.FrameCount())
}

func TestServer_StopAfterStartFailure(t *testing.T) {
	serverConfig := &config.ServerConfig{ConfigDir: t.TempDir(), ServerParam: config.DefaultServerParam()}
	serverConfig.Backend = config.BackendNone
	serverConfig.Buttons = nil
	serverConfig.Listen = "127.0.0.1:0"

	display := device.NewMemory()
	app, err := NewServerApp(serverConfig, display)
	require.NoError(t, err)
	app.buttonsDevice, err = device.NewButtons([]gpio.PinIn{&gpiotest.Pin{N: "GPIO5", L: gpio.High}})
	require.NoError(t, err)

	failure := errors.New("spi: panel not responding")
	display.Fail(failure)
	err = app.Start()
	assert.ErrorIs(t, err, failure)

	stopped := make(chan struct{})
	go func() {
		app.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed start")
	}
	assert.True(t, display.Stopped())
}

// brokenTarget panics on draw_icon and accepts everything else.
type brokenTarget struct{}

func (brokenTarget) DrawIcon(iconId string) error         { panic("icon table corrupted") }
func (brokenTarget) ClearIcon(iconId string) error        { return nil }
func (brokenTarget) DrawImage(path string) error          { return nil }
func (brokenTarget) SetIconBarColor(r, g, b, a int) error { return nil }
func (brokenTarget) WakeBacklight() error                 { return nil }

func TestServer_PanicIsAnsweredAsInternalError(t *testing.T) {
	ts := newTestServerWith(t, nil, nil, brokenTarget{})

	response := ts.command(t, `{"command":"draw_icon","icon":"wifi_wait"}`)
	assert.Equal(t, exception("InternalError", "icon table corrupted"), response)

	// the loop keeps serving
	assert.Equal(t, apimodel.OkResponse(), ts.command(t, `{"command":"backlight"}`))
	assert.NoError(t, ts.app.Err())
}
