package wire

import (
	"encoding/json"
	"errors"

	"SharedBoard/internal/state"
)

// ErrNotObject is returned by Stamp for frames that are not JSON objects.
var ErrNotObject = errors.New("wire: frame is not a json object")

// Stamp sets the "from" field of a raw frame and leaves every other field
// untouched. The relay uses it so it never has to understand the payload.
func Stamp(data []byte, from string) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, ErrNotObject
	}
	id, err := json.Marshal(from)
	if err != nil {
		return nil, err
	}
	obj["from"] = id
	return json.Marshal(obj)
}

// Departure is the synthetic End the relay sends when a sender disconnects.
func Departure(from string) []byte {
	data, _ := json.Marshal(frame{Type: string(state.KindEnd), From: from})
	return data
}
