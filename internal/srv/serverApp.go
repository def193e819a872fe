package srv

import (
	"fmt"
	"github.com/jypelle/piratedisplay/internal/images"
	"github.com/jypelle/piratedisplay/internal/srv/backlight"
	"github.com/jypelle/piratedisplay/internal/srv/command"
	"github.com/jypelle/piratedisplay/internal/srv/compositor"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/jypelle/piratedisplay/internal/srv/device"
	"github.com/jypelle/piratedisplay/internal/version"
	"github.com/sirupsen/logrus"
	"sync"
)

type ServerApp struct {
	*config.ServerConfig
	backend         device.Backend
	compositor      *compositor.Compositor
	backlightDevice *backlight.Monitor
	dispatcher      *command.Dispatcher
	apiDevice       *device.Api
	buttonsDevice   *device.Buttons

	requestLoopAskDone chan struct{}
	requestLoopDone    chan struct{}
	requestLoopErr     error

	stopOnce sync.Once
}

// NewServerApp wires the display stack on top of backend. The server owns backend from now on.
func NewServerApp(serverConfig *config.ServerConfig, backend device.Backend) (*ServerApp, error) {

	logrus.Debugf("Creation of piratedisplay server %s ...", version.AppVersion.String())

	geometry := compositor.PirateAudio
	assets, err := images.Load(serverConfig.GetCompleteAssetsDir(), geometry.Width, geometry.Height, geometry.IconBarHeight, compositor.IconIds())
	if err != nil {
		return nil, fmt.Errorf("unable to load icon assets: %w", err)
	}

	app := &ServerApp{
		ServerConfig:       serverConfig,
		backend:            backend,
		requestLoopAskDone: make(chan struct{}),
		requestLoopDone:    make(chan struct{}),
	}

	app.backlightDevice = backlight.NewMonitor(backend, serverConfig.Backlight.Timeout.Duration(), serverConfig.Backlight.CheckInterval.Duration())
	iconBarColor := serverConfig.IconBarColor
	app.compositor = compositor.NewCompositor(
		geometry,
		backend,
		app.backlightDevice,
		assets,
		compositor.Color{R: iconBarColor.R, G: iconBarColor.G, B: iconBarColor.B, A: iconBarColor.A},
	)
	app.dispatcher = command.NewDispatcher(app.compositor, serverConfig.GetImageRoot())
	app.apiDevice = device.NewApi(serverConfig)
	if len(serverConfig.Buttons) > 0 {
		app.buttonsDevice, err = device.OpenButtons(serverConfig.Buttons)
		if err != nil {
			logrus.Warnf("Buttons disabled: %v", err)
		}
	}

	logrus.Debugln("Server created")

	return app, nil
}

// Start brings the display up and starts serving the command channel.
func (s *ServerApp) Start() error {
	logrus.Printf("Starting piratedisplay server ...")

	if err := s.startCore(); err != nil {
		return err
	}

	// Start api device
	if err := s.apiDevice.Start(); err != nil {
		s.Stop()
		return err
	}
	return nil
}

// startCore starts everything but the network listener.
func (s *ServerApp) startCore() error {
	// Start backlight device, panel dark
	if err := s.backlightDevice.Start(); err != nil {
		close(s.requestLoopDone)
		return fmt.Errorf("unable to switch backlight off: %w", err)
	}

	// Display startup screen, shown once the backlight is woken up
	if err := s.compositor.Init(s.splashImage()); err != nil {
		s.backlightDevice.Stop()
		close(s.requestLoopDone)
		return err
	}

	// Start request loop
	go s.requestLoop()

	// Start buttons device
	if s.buttonsDevice != nil {
		s.buttonsDevice.Start()
	}
	return nil
}

// Done is closed when the request loop has returned, either stopped or on a fatal error
// reported by Err.
func (s *ServerApp) Done() <-chan struct{} {
	return s.requestLoopDone
}

func (s *ServerApp) Err() error {
	select {
	case <-s.requestLoopDone:
		return s.requestLoopErr
	default:
		return nil
	}
}

func (s *ServerApp) Stop() {
	s.stopOnce.Do(func() {
		logrus.Printf("Stopping piratedisplay server ...")

		// Stop api
		s.apiDevice.StopSendingEvent()

		// Stop buttons device
		if s.buttonsDevice != nil {
			s.buttonsDevice.StopSendingEvent()
		}

		// Stop request loop
		logrus.Infof("Stop request loop")
		select {
		case <-s.requestLoopDone:
		default:
			close(s.requestLoopAskDone)
			<-s.requestLoopDone
		}

		// Stop backlight device
		s.backlightDevice.Stop()

		// Stop display
		if err := s.backend.Close(); err != nil {
			logrus.Warnf("Unable to close display: %v", err)
		}

		logrus.Printf("Server stopped")
	})
}
