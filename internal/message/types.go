// Package message carries requests from the popup to the background
// router and their asynchronous replies.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/runnerr0/urlhider/internal/history"
)

// Action tags a request variant.
type Action string

const (
	ActionCreateHiddenWindow Action = "createHiddenWindow"
	ActionGetUsageData       Action = "getUsageData"
)

// Request is the envelope sent by the popup.
type Request struct {
	Action Action `json:"action"`
	URL    string `json:"url,omitempty"`
	// RequestID, when set, is echoed on the response.
	RequestID string `json:"requestId,omitempty"`
}

// Response is the envelope sent back. A successful window reply carries
// WindowID; a successful usage reply carries a non-nil Data.
type Response struct {
	Success   bool                  `json:"success"`
	WindowID  int                   `json:"windowId,omitempty"`
	Data      []history.UsageRecord `json:"data"`
	Error     string                `json:"error,omitempty"`
	RequestID string                `json:"requestId,omitempty"`
}

// MarshalJSON sends data only on usage replies, so that an empty log is
// still "data":[], and windowId on every other success, including ID 0.
func (r Response) MarshalJSON() ([]byte, error) {
	type wire struct {
		Success   bool                   `json:"success"`
		WindowID  *int                   `json:"windowId,omitempty"`
		Data      *[]history.UsageRecord `json:"data,omitempty"`
		Error     string                 `json:"error,omitempty"`
		RequestID string                 `json:"requestId,omitempty"`
	}
	w := wire{
		Success:   r.Success,
		Error:     r.Error,
		RequestID: r.RequestID,
	}
	switch {
	case r.Data != nil:
		w.Data = &r.Data
	case r.Success:
		w.WindowID = &r.WindowID
	}
	return json.Marshal(w)
}

// OkWindow is the reply to a successful createHiddenWindow.
func OkWindow(id int) Response {
	return Response{Success: true, WindowID: id}
}

// OkData is the reply to getUsageData. nil data is sent as an empty list.
func OkData(data []history.UsageRecord) Response {
	if data == nil {
		data = []history.UsageRecord{}
	}
	return Response{Success: true, Data: data}
}

// Err is a failure reply carrying a user-facing message.
func Err(msg string) Response {
	return Response{Success: false, Error: msg}
}

// DecodeError reports an envelope that did not decode as a Request. Action
// and RequestID hold whatever could still be read from it, so a known
// action can be answered with an error.
type DecodeError struct {
	Action    Action
	RequestID string
	Err       error
}

func (e *DecodeError) Error() string {
	return "decode request: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeRequest parses a request envelope. Failures are *DecodeError.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		derr := &DecodeError{Err: err}
		var loose map[string]json.RawMessage
		if json.Unmarshal(data, &loose) == nil {
			var action string
			if json.Unmarshal(loose["action"], &action) == nil {
				derr.Action = Action(action)
			}
			derr.RequestID = looseID(loose["requestId"])
		}
		return Request{}, derr
	}
	return req, nil
}

// looseID reads a request ID sent as a string or as any other JSON scalar.
func looseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// DecodeResponse parses a response envelope.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
