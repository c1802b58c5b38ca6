package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/circles/internal/nodeid"
)

// Event names.
const (
	EventGraph       = "graph"
	EventParams      = "params"
	EventSnapshot    = "snapshot"
	EventError       = "error"
	EventGraphGet    = "graph:get"
	EventSnapshotGet = "snapshot:get"
	EventParamSet    = "param:set"
)

// GraphRequest is the payload of graph:get.
type GraphRequest struct {
	Revision uint64 `json:"revision"`
}

// ParamRequest is the payload of param:set. Exactly one of Scalar and Array
// must be set.
type ParamRequest struct {
	Handle nodeid.Handle `json:"handle"`
	Scalar *float32      `json:"scalar,omitempty"`
	Array  []float32     `json:"array,omitempty"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Request string `json:"request"`
	Message string `json:"message"`
}

func errorPayload(request string, err error) any {
	wire, _ := toWire(ErrorPayload{Request: request, Message: err.Error()})
	return wire
}

// toWire converts v into the plain maps and slices the socket.io parser
// serializes, using v's JSON encoding.
func toWire(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromWire decodes the first event argument into target. A missing argument
// leaves target at its zero value.
func fromWire(args []any, target any) error {
	if len(args) == 0 || args[0] == nil {
		return nil
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return fmt.Errorf("unencodable payload: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

func (r ParamRequest) validate() error {
	if !r.Handle.Valid() {
		return fmt.Errorf("param:set needs a node handle")
	}
	if (r.Scalar == nil) == (r.Array == nil) {
		return fmt.Errorf("param:set needs exactly one of scalar and array")
	}
	return nil
}
