package srv

import (
	"github.com/jypelle/piratedisplay/apimodel"
	"github.com/jypelle/piratedisplay/internal/srv/event"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"runtime/debug"
	"time"
)

// requestLoop serves the command channel one request at a time. It is the only goroutine
// touching the compositor once started.
func (s *ServerApp) requestLoop() {
	defer close(s.requestLoopDone)
	defer s.apiDevice.Close()

	ticker := time.NewTicker(s.PollInterval.Duration())
	defer ticker.Stop()

	for {
		if s.compositor.Stopped() {
			logrus.Infof("Display stopped, leave request loop")
			return
		}

		select {
		case <-s.requestLoopAskDone:
			return
		case <-ticker.C:
		case ev := <-s.apiDevice.EventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventCommandData:
				if err := s.handleCommand(ev, data); err != nil {
					s.requestLoopErr = err
					return
				}
			case event.ApiEventStatusData:
				ev.Result <- s.status()
			}
		case ev := <-s.buttonsEventChannel():
			if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == 1 {
				logrus.Debugf("Receive button %s press event", ev.Name)
				if err := s.compositor.WakeBacklight(); err != nil {
					logrus.Errorf("Display failure: %v", err)
					s.requestLoopErr = err
					return
				}
			}
		}
	}
}

// buttonsEventChannel is nil, and never ready, without buttons.
func (s *ServerApp) buttonsEventChannel() chan event.ButtonEvent {
	if s.buttonsDevice == nil {
		return nil
	}
	return s.buttonsDevice.EventChannel()
}

// handleCommand answers one command and returns the error when it is fatal. A panic is
// answered as an internal error and does not stop the loop.
func (s *ServerApp) handleCommand(ev event.ApiEvent, data event.ApiEventCommandData) (fatalErr error) {
	logger := logrus.WithField("request", ulid.Make().String())
	logger.Debugf("Receive command: %s", data.Raw)

	replied := false
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
			if !replied {
				ev.Result <- apimodel.ExceptionResponse(apimodel.NewException(apimodel.InternalError, "%v", rec))
			}
			fatalErr = nil
		}
	}()

	cmd, response, err := s.dispatcher.Handle(data.Raw)
	ev.Result <- response
	replied = true

	switch {
	case err == nil:
		logger.Debugf("Command %s done", cmd.Name())
	case apimodel.IsFatal(err):
		logger.Errorf("Display failure: %v", err)
		return err
	default:
		logger.Warnf("Command rejected: %v", err)
	}
	return nil
}

func (s *ServerApp) status() apimodel.Status {
	c := s.compositor.IconBarColor()
	return apimodel.Status{
		Backlight:    s.backlightDevice.IsOn(),
		LastActivity: s.backlightDevice.LastActivity().Format(time.RFC3339),
		ActiveIcons:  s.compositor.ActiveIcons(),
		IconBarColor: [4]int{c.R, c.G, c.B, c.A},
	}
}
