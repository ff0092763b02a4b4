package stream

import (
	"bytes"
	"testing"
)

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer

	err := writeFrame(&buf, Frame{ID: "3", Event: "message", Data: []byte(`{"results":[]}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "id: 3\nevent: message\ndata: {\"results\":[]}\n\n"
	if buf.String() != want {
		t.Errorf("unexpected frame:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteFrame_NoID(t *testing.T) {
	var buf bytes.Buffer

	if err := writeFrame(&buf, Frame{Event: "heartbeat", Data: []byte("{}")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "event: heartbeat\ndata: {}\n\n"
	if buf.String() != want {
		t.Errorf("unexpected frame: %q", buf.String())
	}
}

func TestWriteFrame_MultilineData(t *testing.T) {
	var buf bytes.Buffer

	if err := writeFrame(&buf, Frame{Event: "message", Data: []byte("line1\nline2")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "event: message\ndata: line1\ndata: line2\n\n"
	if buf.String() != want {
		t.Errorf("unexpected frame: %q", buf.String())
	}
}
