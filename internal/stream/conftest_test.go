package stream

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/vecgate/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterStreamMetrics()
	os.Exit(m.Run())
}

// syncBuffer is a goroutine-safe writer: Run writes from its own goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// failWriter errors on every write after the first n.
type failWriter struct {
	mu     sync.Mutex
	okLeft int
}

func (w *failWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.okLeft > 0 {
		w.okLeft--
		return len(p), nil
	}
	return 0, errors.New("broken pipe")
}

// hookRecorder captures transitions; read it only after Run returned.
type hookRecorder struct {
	mu    sync.Mutex
	steps []State
}

func (r *hookRecorder) hook(_, to State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, to)
}

func (r *hookRecorder) sequence() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.steps))
	copy(out, r.steps)
	return out
}

// frames splits raw SSE output into individual frames.
func frames(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
