package apimodel

import (
	"encoding/json"
	"errors"
)

const (
	ResponseOk        = "ok"
	ResponseException = "exception"
)

// Response is the reply sent for every request of the command channel.
type Response struct {
	Response string `json:"response"`
	Name     string `json:"name,omitempty"`
	Text     string `json:"text,omitempty"`
}

type okReply struct {
	Response string `json:"response"`
}

type exceptionReply struct {
	Response string `json:"response"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

// MarshalJSON always writes name and text for an exception, even when empty.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.IsOk() {
		return json.Marshal(okReply{Response: r.Response})
	}
	return json.Marshal(exceptionReply{Response: r.Response, Name: r.Name, Text: r.Text})
}

func OkResponse() Response {
	return Response{Response: ResponseOk}
}

// ExceptionResponse converts any error into an exception reply. Errors that are not an
// *Exception are reported with the InternalError kind.
func ExceptionResponse(err error) Response {
	var exc *Exception
	if !errors.As(err, &exc) {
		exc = &Exception{Kind: InternalError, Text: err.Error()}
	}
	return Response{Response: ResponseException, Name: string(exc.Kind), Text: exc.Text}
}

func (r Response) IsOk() bool {
	return r.Response == ResponseOk
}

// Err returns nil for an ok reply, the carried *Exception otherwise.
func (r Response) Err() error {
	if r.IsOk() {
		return nil
	}
	return &Exception{Kind: ExceptionKind(r.Name), Text: r.Text}
}
