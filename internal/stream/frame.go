package stream

import (
	"bytes"
	"fmt"
	"io"
)

// Event names used on the wire.
const (
	EventEndpoint  = "endpoint"
	EventHeartbeat = "heartbeat"
	EventMessage   = "message"
)

// Frame is one server-sent event.
type Frame struct {
	ID    string
	Event string
	Data  []byte
}

// writeFrame serializes one SSE frame. Multi-line data gets one data:
// field per line, per the SSE framing rules.
func writeFrame(w io.Writer, f Frame) error {
	var buf bytes.Buffer
	if f.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", f.ID)
	}
	fmt.Fprintf(&buf, "event: %s\n", f.Event)
	for _, line := range bytes.Split(f.Data, []byte("\n")) {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteByte('\n')

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
