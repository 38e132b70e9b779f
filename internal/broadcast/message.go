package broadcast

import "encoding/json"

// Envelope is the wire frame spec.md §6 requires: a JSON object whose
// mandatory `type` field names the record kind, wrapping the record
// itself - the Go equivalent of message.py's MessageHandler.convert_*/
// revert, generalized to every kind instead of only Transaction.
type Envelope struct {
	Type MessageKind     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Encode wraps record (already canonically marshaled) in a typed envelope.
func Encode(kind MessageKind, record []byte) ([]byte, error) {
	return json.Marshal(Envelope{Type: kind, Data: record})
}

// Decode splits a received frame back into its kind and raw payload, the
// first step of message.py's revert() before dispatching on type.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(frame, &env)
	return env, err
}
