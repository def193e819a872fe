package backlight

import (
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Switch powers the panel backlight.
type Switch interface {
	SetBacklight(enabled bool) error
	Stopped() bool
}

// Monitor switches the backlight on when activity is signaled and off after a period without
// activity. It never switches the backlight on by itself.
type Monitor struct {
	lock         sync.Mutex
	sw           Switch
	on           bool
	lastActivity time.Time

	timeout       time.Duration
	checkInterval time.Duration
	now           func() time.Time

	stopOnce sync.Once
	askDone  chan struct{}
	done     chan struct{}
}

func NewMonitor(sw Switch, timeout time.Duration, checkInterval time.Duration) *Monitor {
	return &Monitor{
		sw:            sw,
		timeout:       timeout,
		checkInterval: checkInterval,
		now:           time.Now,
		askDone:       make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start switches the backlight off and launches the timeout loop.
func (m *Monitor) Start() error {
	logrus.Infof("Start backlight monitor (timeout %v)", m.timeout)

	m.lock.Lock()
	err := m.sw.SetBacklight(false)
	m.on = false
	m.lastActivity = m.now()
	m.lock.Unlock()
	if err != nil {
		close(m.done)
		return err
	}

	go m.loop()
	return nil
}

func (m *Monitor) Stop() {
	logrus.Infof("Stop backlight monitor")
	m.stopOnce.Do(func() {
		close(m.askDone)
	})
	<-m.done
}

// Done is closed once the loop has returned.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Activity records activity and switches the backlight on if it was off. The backlight is on
// when Activity returns without error.
func (m *Monitor) Activity() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.lastActivity = m.now()
	if m.on {
		return nil
	}
	logrus.Debugf("Backlight on")
	if err := m.sw.SetBacklight(true); err != nil {
		return err
	}
	m.on = true
	return nil
}

func (m *Monitor) IsOn() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.on
}

func (m *Monitor) LastActivity() time.Time {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.lastActivity
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.askDone:
			return
		case <-ticker.C:
			if m.sw.Stopped() {
				logrus.Infof("Display stopped, leave backlight monitor")
				return
			}
			if err := m.check(); err != nil {
				logrus.Errorf("Unable to switch backlight off: %v", err)
				return
			}
		}
	}
}

// check switches the backlight off once the timeout has elapsed since the last activity.
func (m *Monitor) check() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.on || m.now().Sub(m.lastActivity) < m.timeout {
		return nil
	}
	logrus.Debugf("Backlight off after %v without activity", m.timeout)
	if err := m.sw.SetBacklight(false); err != nil {
		return err
	}
	m.on = false
	return nil
}
