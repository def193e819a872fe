package event

// Api
type ApiEvent struct {
	Result chan interface{}
	Data   interface{}
}

// ApiEventCommandData carries one raw request of the command channel. Result receives an
// apimodel.Response.
type ApiEventCommandData struct {
	Raw []byte
}

// ApiEventStatusData asks for a snapshot of the display state. Result receives an
// apimodel.Status.
type ApiEventStatusData struct{}

// Buttons
type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	Name            string
	ButtonEventType ButtonEventType
	PressStepCount  int64
}
